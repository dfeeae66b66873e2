package httpapi

import (
	"net/http"

	"github.com/go-chi/render"

	resp "github.com/xtding233/spin-wheel/internal/lib/api/response"
	"github.com/xtding233/spin-wheel/internal/stats"
	"github.com/xtding233/spin-wheel/internal/wheel"
)

type SimulateOption struct {
	ID     string `json:"id" validate:"required"`
	Text   string `json:"text" validate:"required"`
	Weight int    `json:"weight" validate:"required,min=1,max=100"`
}

type SimulateRequest struct {
	Options []SimulateOption `json:"options" validate:"required,min=1,dive"`
	Trials  int              `json:"trials" validate:"required,min=1,max=1000000"`
	Seed    *uint64          `json:"seed"`
}

type SimulateResponse struct {
	resp.Response
	Report stats.Report `json:"report"`
}

// Simulate runs the selector many times over the given options and
// compares observed frequencies with the weights.
func (h *Handler) Simulate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpapi.Simulate"
		log := h.requestLog(r, op)

		var req SimulateRequest
		if !h.decode(w, r, log, &req) {
			return
		}
		opts := make([]wheel.Option, len(req.Options))
		for i, o := range req.Options {
			opts[i] = wheel.Option{ID: o.ID, Text: o.Text, Weight: o.Weight, Enabled: true}
		}
		if err := wheel.ValidateOptions(opts); err != nil {
			h.fail(w, r, log, err)
			return
		}

		rng := wheel.DefaultRNG()
		if req.Seed != nil {
			rng = wheel.NewSeededRNG(*req.Seed)
		}
		report, err := stats.RunMonteCarlo(opts, req.Trials, rng)
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		render.JSON(w, r, SimulateResponse{Response: resp.OK(), Report: report})
	}
}
