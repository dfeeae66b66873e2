package ws

import (
	"time"

	"github.com/xtding233/spin-wheel/internal/spin"
	"github.com/xtding233/spin-wheel/internal/wheel"
)

// Presenter draws one wheel for its websocket viewers. Browsers animate the
// rotation themselves; the server completes it after the same duration.
type Presenter struct {
	hub     *Hub
	channel string
}

// Presenter returns the presenter of wheelID.
func (hub *Hub) Presenter(wheelID string) *Presenter {
	return &Presenter{hub: hub, channel: Channel(wheelID)}
}

type rotatePayload struct {
	Rotation   float64 `json:"rotation"`
	DurationMS int64   `json:"duration_ms"`
}

func (p *Presenter) RenderSlices(layout []wheel.Slice) {
	p.hub.Publish(p.channel, EventSlices, layout)
}

func (p *Presenter) ApplyRotation(degrees float64, d time.Duration, done func()) {
	p.hub.Publish(p.channel, EventRotate, rotatePayload{Rotation: degrees, DurationMS: d.Milliseconds()})
	time.AfterFunc(d, done)
}

func (p *Presenter) PlayTick() { p.hub.Publish(p.channel, EventTick, nil) }

func (p *Presenter) PlayCelebration() { p.hub.Publish(p.channel, EventCelebrate, nil) }

// Outcome announces a settled spin.
func (p *Presenter) Outcome(out spin.Outcome) { p.hub.Publish(p.channel, EventOutcome, out) }

// State announces a changed wheel.
func (p *Presenter) State(st wheel.State) { p.hub.Publish(p.channel, EventState, st) }

var (
	_ spin.Renderer = (*Presenter)(nil)
	_ spin.Audio    = (*Presenter)(nil)
)

// PublishState announces a changed wheel to its viewers.
func (hub *Hub) PublishState(wheelID string, st wheel.State) {
	hub.Presenter(wheelID).State(st)
}

// PublishOutcome announces a settled spin to the viewers of wheelID.
func (hub *Hub) PublishOutcome(wheelID string, out spin.Outcome) {
	hub.Presenter(wheelID).Outcome(out)
}
