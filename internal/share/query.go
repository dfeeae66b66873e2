package share

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/xtding233/spin-wheel/internal/wheel"
)

// Query parameter names used by the share link.
const (
	ParamOptions = "o"
	ParamVolume  = "v"
	ParamSound   = "s"
)

// Query renders a snapshot as share-link parameters.
func Query(s wheel.State) (url.Values, error) {
	blob, err := EncodeOptions(s.Options)
	if err != nil {
		return nil, err
	}
	sound := "0"
	if s.SoundEnabled {
		sound = "1"
	}
	return url.Values{
		ParamOptions: {blob},
		ParamVolume:  {strconv.Itoa(VolumePercent(s.Volume))},
		ParamSound:   {sound},
	}, nil
}

// HasParams reports whether q carries any share parameter.
func HasParams(q url.Values) bool {
	return q.Has(ParamOptions) || q.Has(ParamVolume) || q.Has(ParamSound)
}

// ApplyQuery overlays share-link parameters onto current and returns the new
// snapshot. Options are replaced only when o decodes to a non-empty list;
// v and s override only when valid. Each rejected parameter is reported in
// diags and leaves its part of current untouched.
func ApplyQuery(q url.Values, current wheel.State) (next wheel.State, diags []error) {
	next = current.Clone()

	if q.Has(ParamOptions) {
		opts, err := DecodeOptions(q.Get(ParamOptions))
		switch {
		case err != nil:
			diags = append(diags, fmt.Errorf("param %s: %w", ParamOptions, err))
		case len(opts) == 0:
			diags = append(diags, fmt.Errorf("param %s: %w", ParamOptions, decodeErr("empty option list")))
		default:
			next.Options = opts
		}
	}

	if q.Has(ParamVolume) {
		v, err := strconv.Atoi(q.Get(ParamVolume))
		if err != nil || v < 0 || v > 100 {
			diags = append(diags, fmt.Errorf("param %s: %w", ParamVolume, decodeErr("volume %q out of range", q.Get(ParamVolume))))
		} else {
			next.Volume = float64(v) / 100
		}
	}

	if q.Has(ParamSound) {
		switch q.Get(ParamSound) {
		case "0":
			next.SoundEnabled = false
		case "1":
			next.SoundEnabled = true
		default:
			diags = append(diags, fmt.Errorf("param %s: %w", ParamSound, decodeErr("sound flag %q", q.Get(ParamSound))))
		}
	}
	return next, diags
}
