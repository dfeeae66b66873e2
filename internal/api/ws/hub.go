// Package ws pushes wheel events to websocket subscribers.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"github.com/xtding233/spin-wheel/internal/lib/logger/sl"
)

const (
	EventSubscribed = "subscribed"
	EventSlices     = "slices"
	EventRotate     = "rotate"
	EventTick       = "tick"
	EventCelebrate  = "celebrate"
	EventOutcome    = "outcome"
	EventState      = "state"
)

const writeWait = 5 * time.Second

type Message struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data,omitempty"`
}

type Subscription struct {
	Conn    *websocket.Conn
	Channel string
}

// Hub fans messages out to the connections subscribed to a channel.
// Only the run loop writes to connections.
type Hub struct {
	channels    map[string]map[*websocket.Conn]bool
	broadcast   chan Message
	subscribe   chan Subscription
	unsubscribe chan Subscription
	done        chan struct{}
	log         *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		channels:    make(map[string]map[*websocket.Conn]bool),
		broadcast:   make(chan Message, 256),
		subscribe:   make(chan Subscription),
		unsubscribe: make(chan Subscription),
		done:        make(chan struct{}),
		log:         sl.OrDiscard(log),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Channel names the channel of a wheel.
func Channel(wheelID string) string { return "wheel:" + wheelID }

// Run serves subscriptions and broadcasts until ctx is done, then closes
// every connection.
func (hub *Hub) Run(ctx context.Context) {
	defer func() {
		for _, conns := range hub.channels {
			for conn := range conns {
				_ = conn.Close()
			}
		}
		hub.channels = map[string]map[*websocket.Conn]bool{}
		close(hub.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-hub.subscribe:
			if hub.channels[sub.Channel] == nil {
				hub.channels[sub.Channel] = make(map[*websocket.Conn]bool)
			}
			hub.channels[sub.Channel][sub.Conn] = true
			hub.write(sub.Channel, sub.Conn, Message{Channel: sub.Channel, Event: EventSubscribed})
		case sub := <-hub.unsubscribe:
			hub.drop(sub.Channel, sub.Conn)
		case message := <-hub.broadcast:
			receivers, ok := hub.channels[message.Channel]
			if !ok {
				continue
			}
			data, err := json.Marshal(message)
			if err != nil {
				hub.log.Error("failed to marshal message", sl.Err(err))
				continue
			}
			hub.log.Debug("broadcasting message",
				sl.String("channel", message.Channel),
				sl.String("event", message.Event),
			)
			for conn := range receivers {
				hub.writeRaw(message.Channel, conn, data)
			}
		}
	}
}

func (hub *Hub) write(channel string, conn *websocket.Conn, m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		hub.log.Error("failed to marshal message", sl.Err(err))
		return
	}
	hub.writeRaw(channel, conn, data)
}

func (hub *Hub) writeRaw(channel string, conn *websocket.Conn, data []byte) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		hub.log.Warn("failed to write message, dropping subscriber", sl.String("channel", channel), sl.Err(err))
		hub.drop(channel, conn)
	}
}

func (hub *Hub) drop(channel string, conn *websocket.Conn) {
	conns := hub.channels[channel]
	if !conns[conn] {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(hub.channels, channel)
	}
	_ = conn.Close()
}

// Publish queues a message without blocking. Messages are dropped when
// the queue is full.
func (hub *Hub) Publish(channel, event string, data any) {
	select {
	case hub.broadcast <- Message{Channel: channel, Event: event, Data: data}:
	default:
		hub.log.Warn("broadcast queue full, dropping message",
			sl.String("channel", channel),
			sl.String("event", event),
		)
	}
}

// HandleConnection upgrades the request and subscribes it to channel
// until the client goes away. Client messages are ignored.
func (hub *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Error("failed to upgrade connection", sl.Err(err))
		return
	}
	sub := Subscription{Conn: conn, Channel: channel}

	select {
	case hub.subscribe <- sub:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.log.Debug("connection closed", sl.String("channel", channel), sl.Err(err))
			break
		}
	}
	select {
	case hub.unsubscribe <- sub:
	case <-hub.done:
	}
}
