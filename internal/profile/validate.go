package profile

import (
	"fmt"
	"strings"

	"github.com/xtding233/spin-wheel/internal/wheel"
)

// ValidateRaw checks semantic constraints of a RawConfig and reports every
// violation at once.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// weights
	seen := map[int]bool{}
	for i, w := range cfg.Weights {
		if w <= 0 {
			errs = append(errs, fmt.Sprintf("weights[%d] must be >= 1", i))
		}
		if w > wheel.MaxWeight {
			errs = append(errs, fmt.Sprintf("weights[%d] must be <= %d", i, wheel.MaxWeight))
		}
		if seen[w] {
			errs = append(errs, fmt.Sprintf("weights[%d] duplicates %d", i, w))
		}
		seen[w] = true
	}

	// spin
	if d := cfg.Spin.DurationMS; d != nil && *d <= 0 {
		errs = append(errs, "spin.duration_ms must be > 0")
	}
	if ti := cfg.Spin.TickIntervalMS; ti != nil && *ti < 0 {
		errs = append(errs, "spin.tick_interval_ms must be >= 0 (0 disables ticks)")
	}
	if mt := cfg.Spin.MinTurns; mt != nil && *mt < 0 {
		errs = append(errs, "spin.min_turns must be >= 0")
	}
	if cfg.Spin.MinTurns != nil && cfg.Spin.MaxTurns != nil && *cfg.Spin.MaxTurns < *cfg.Spin.MinTurns {
		errs = append(errs, "spin.max_turns must be >= spin.min_turns")
	}

	// audio
	if cfg.Audio != nil && cfg.Audio.Volume != nil {
		if v := *cfg.Audio.Volume; v < 0 || v > 1 {
			errs = append(errs, "audio.volume must be in [0,1]")
		}
	}

	// defaults
	for i, d := range cfg.Defaults {
		if strings.TrimSpace(d) == "" {
			errs = append(errs, fmt.Sprintf("defaults[%d] must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
