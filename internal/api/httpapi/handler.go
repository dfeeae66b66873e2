// Package httpapi exposes wheels over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	resp "github.com/xtding233/spin-wheel/internal/lib/api/response"
	"github.com/xtding233/spin-wheel/internal/lib/logger/sl"
	"github.com/xtding233/spin-wheel/internal/session"
	"github.com/xtding233/spin-wheel/internal/share"
	"github.com/xtding233/spin-wheel/internal/wheel"
)

// Sessions hands out live wheel sessions.
type Sessions interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Events receives wheel changes and websocket subscriptions. Optional.
type Events interface {
	PublishState(wheelID string, st wheel.State)
	HandleConnection(w http.ResponseWriter, r *http.Request, channel string)
}

type Handler struct {
	log       *slog.Logger
	validator *validator.Validate
	sessions  Sessions
	events    Events
}

func New(log *slog.Logger, sessions Sessions, events Events) *Handler {
	return &Handler{
		log:       sl.OrDiscard(log),
		validator: validator.New(),
		sessions:  sessions,
		events:    events,
	}
}

// Router builds the chi router with the standard middleware stack.
func (h *Handler) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(h.log))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", h.Health())
	router.Post("/simulate", h.Simulate())

	router.Route("/wheels/{wheelID}", func(r chi.Router) {
		r.Get("/", h.GetWheel())
		r.Post("/options", h.AddOption())
		r.Delete("/options/{optionID}", h.RemoveOption())
		r.Post("/options/{optionID}/toggle", h.ToggleOption())
		r.Put("/options/{optionID}/weight", h.SetWeight())
		r.Put("/settings", h.UpdateSettings())
		r.Post("/spin", h.Spin())
		r.Get("/spin/last", h.LastSpin())
		r.Get("/share", h.ExportShare())
		r.Post("/share", h.ImportShare())
		r.Get("/ws", h.Subscribe())
	})

	return router
}

func (h *Handler) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, resp.OK())
	}
}

func (h *Handler) requestLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// session resolves the {wheelID} of the request.
func (h *Handler) session(r *http.Request) (*session.Session, string, error) {
	id := chi.URLParam(r, "wheelID")
	s, err := h.sessions.Get(r.Context(), id)
	return s, id, err
}

// decode reads and validates a JSON body, writing the error response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		log.Warn("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Warn("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(verrs))
			return false
		}
		h.fail(w, r, log, err)
		return false
	}
	return true
}

// changed pushes the current state to websocket viewers.
func (h *Handler) changed(ctx context.Context, id string, s *session.Session) {
	if h.events == nil {
		return
	}
	st, err := s.Snapshot(ctx)
	if err != nil {
		return
	}
	h.events.PublishState(id, st)
}

// fail maps domain errors onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Warn("request rejected", sl.Err(err))
	}
	render.Status(r, status)
	render.JSON(w, r, resp.Error(err.Error(), status))
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var verr *wheel.ValidationError
	switch {
	case errors.As(err, &verr) && verr.Reason == "not found":
		return http.StatusNotFound
	case errors.Is(err, share.ErrDecode), errors.Is(err, wheel.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, wheel.ErrAlreadyInProgress), errors.Is(err, wheel.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
