package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/xtding233/spin-wheel/internal/api/ws"
	resp "github.com/xtding233/spin-wheel/internal/lib/api/response"
	"github.com/xtding233/spin-wheel/internal/session"
	"github.com/xtding233/spin-wheel/internal/share"
	"github.com/xtding233/spin-wheel/internal/spin"
	"github.com/xtding233/spin-wheel/internal/wheel"
)

type WheelResponse struct {
	resp.Response
	Wheel session.View `json:"wheel"`
}

type OptionResponse struct {
	resp.Response
	Option wheel.Option `json:"option"`
}

type SpinResponse struct {
	resp.Response
	Plan    *spin.Plan    `json:"plan,omitempty"`
	Outcome *spin.Outcome `json:"outcome,omitempty"`
}

type ShareResponse struct {
	resp.Response
	Token string `json:"token"`
	Query string `json:"query"`
}

type AddOptionRequest struct {
	Text string `json:"text" validate:"required"`
}

type SetWeightRequest struct {
	Weight int `json:"weight" validate:"required,min=1"`
}

type SettingsRequest struct {
	Volume *float64 `json:"volume" validate:"omitempty,min=0,max=1"`
	Sound  *bool    `json:"sound"`
}

type ImportShareRequest struct {
	Token string `json:"token" validate:"required"`
}

// GetWheel returns the wheel. Share-link parameters o, v and s in the query
// are applied first; rejected ones come back as warnings.
func (h *Handler) GetWheel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.GetWheel"
		log := h.requestLog(r, op)

		s, id, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}

		res := WheelResponse{Response: resp.OK()}
		if q := r.URL.Query(); share.HasParams(q) {
			_, diags, err := s.ApplyShareQuery(r.Context(), q)
			if err != nil {
				h.fail(w, r, log, err)
				return
			}
			for _, d := range diags {
				res.Warnings = append(res.Warnings, d.Error())
			}
			h.changed(r.Context(), id, s)
		}

		view, err := s.View(r.Context())
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		res.Wheel = view
		render.JSON(w, r, res)
	}
}

func (h *Handler) AddOption() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.AddOption"
		log := h.requestLog(r, op)

		var req AddOptionRequest
		if !h.decode(w, r, log, &req) {
			return
		}
		s, id, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		o, err := s.AddOption(r.Context(), req.Text)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		h.changed(r.Context(), id, s)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, OptionResponse{Response: resp.Response{Status: http.StatusCreated}, Option: o})
	}
}

func (h *Handler) RemoveOption() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.RemoveOption"
		log := h.requestLog(r, op)

		s, id, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		if err := s.RemoveOption(r.Context(), chi.URLParam(r, "optionID")); err != nil {
			h.fail(w, r, log, err)
			return
		}
		h.changed(r.Context(), id, s)
		render.JSON(w, r, resp.OK())
	}
}

func (h *Handler) ToggleOption() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.ToggleOption"
		log := h.requestLog(r, op)

		s, id, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		o, err := s.ToggleEnabled(r.Context(), chi.URLParam(r, "optionID"))
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		h.changed(r.Context(), id, s)
		render.JSON(w, r, OptionResponse{Response: resp.OK(), Option: o})
	}
}

func (h *Handler) SetWeight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.SetWeight"
		log := h.requestLog(r, op)

		var req SetWeightRequest
		if !h.decode(w, r, log, &req) {
			return
		}
		s, id, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		o, err := s.SetWeight(r.Context(), chi.URLParam(r, "optionID"), req.Weight)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		h.changed(r.Context(), id, s)
		render.JSON(w, r, OptionResponse{Response: resp.OK(), Option: o})
	}
}

func (h *Handler) UpdateSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.UpdateSettings"
		log := h.requestLog(r, op)

		var req SettingsRequest
		if !h.decode(w, r, log, &req) {
			return
		}
		s, id, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		if req.Volume != nil {
			if err := s.SetVolume(r.Context(), *req.Volume); err != nil {
				h.fail(w, r, log, err)
				return
			}
		}
		if req.Sound != nil {
			if err := s.SetSound(r.Context(), *req.Sound); err != nil {
				h.fail(w, r, log, err)
				return
			}
		}
		h.changed(r.Context(), id, s)
		render.JSON(w, r, resp.OK())
	}
}

// Spin starts a spin and returns its plan. With ?wait=1 it blocks until
// the wheel settles and returns the outcome as well.
func (h *Handler) Spin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.Spin"
		log := h.requestLog(r, op)

		s, _, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		ticket, err := s.Spin(r.Context())
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		res := SpinResponse{Response: resp.OK(), Plan: &ticket.Plan}
		if r.URL.Query().Get("wait") == "1" {
			out, err := ticket.Wait(r.Context())
			if err != nil {
				h.fail(w, r, log, err)
				return
			}
			res.Outcome = &out
		} else {
			render.Status(r, http.StatusAccepted)
			res.Status = http.StatusAccepted
		}
		render.JSON(w, r, res)
	}
}

func (h *Handler) LastSpin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.LastSpin"
		log := h.requestLog(r, op)

		s, _, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		out, ok, err := s.LastOutcome(r.Context())
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		if !ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("no spin yet", http.StatusNotFound))
			return
		}
		render.JSON(w, r, SpinResponse{Response: resp.OK(), Outcome: &out})
	}
}

func (h *Handler) ExportShare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.ExportShare"
		log := h.requestLog(r, op)

		s, _, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		token, err := s.ExportShareToken(r.Context())
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		q, err := s.ShareQuery(r.Context())
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		render.JSON(w, r, ShareResponse{Response: resp.OK(), Token: token, Query: q.Encode()})
	}
}

// ImportShare replaces the wheel with a share token. A malformed token is a
// 400 and leaves the wheel as it was.
func (h *Handler) ImportShare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.ImportShare"
		log := h.requestLog(r, op)

		var req ImportShareRequest
		if !h.decode(w, r, log, &req) {
			return
		}
		s, id, err := h.session(r)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		if _, err := s.ImportShareToken(r.Context(), req.Token); err != nil {
			h.fail(w, r, log, err)
			return
		}
		h.changed(r.Context(), id, s)

		view, err := s.View(r.Context())
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		render.JSON(w, r, WheelResponse{Response: resp.OK(), Wheel: view})
	}
}

// Subscribe upgrades to a websocket carrying the wheel's events.
func (h *Handler) Subscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.Subscribe"
		log := h.requestLog(r, op)

		if h.events == nil {
			render.Status(r, http.StatusNotImplemented)
			render.JSON(w, r, resp.Error("events are disabled", http.StatusNotImplemented))
			return
		}
		id := chi.URLParam(r, "wheelID")
		if err := session.ValidateWheelID(id); err != nil {
			h.fail(w, r, log, err)
			return
		}
		h.events.HandleConnection(w, r, ws.Channel(id))
	}
}
