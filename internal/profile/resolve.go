package profile

import (
	"fmt"
	"time"

	"github.com/xtding233/spin-wheel/internal/spin"
)

// DefaultName is the profile used when none is configured.
const DefaultName = "classic"

// Builtin is the profile used for anything the YAML files leave unset.
func Builtin() Profile {
	return Profile{
		Name:         DefaultName,
		Version:      "builtin",
		Weights:      []int{1, 2, 3},
		Duration:     4 * time.Second,
		MinTurns:     7,
		MaxTurns:     10,
		TickInterval: 100 * time.Millisecond,
		Volume:       0.5,
		Sound:        true,
		Defaults:     []string{"Option 1", "Option 2", "Option 3"},
	}
}

// Resolve validates raw and fills it over Builtin.
func Resolve(name string, raw RawConfig) (Profile, error) {
	if err := ValidateRaw(raw); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", name, err)
	}
	p := Builtin()
	p.Name = name
	if raw.Version != "" {
		p.Version = raw.Version
	}
	if len(raw.Weights) > 0 {
		p.Weights = append([]int(nil), raw.Weights...)
	}
	if raw.Defaults != nil {
		p.Defaults = append([]string(nil), raw.Defaults...)
	}
	if v := raw.Spin.DurationMS; v != nil {
		p.Duration = time.Duration(*v) * time.Millisecond
	}
	if v := raw.Spin.TickIntervalMS; v != nil {
		p.TickInterval = time.Duration(*v) * time.Millisecond
	}
	if v := raw.Spin.MinTurns; v != nil {
		p.MinTurns = *v
	}
	if v := raw.Spin.MaxTurns; v != nil {
		p.MaxTurns = *v
	}
	if p.MaxTurns < p.MinTurns {
		// only one bound was overridden
		return Profile{}, fmt.Errorf("profile %s: max_turns %d below min_turns %d", name, p.MaxTurns, p.MinTurns)
	}
	if raw.Audio != nil {
		if raw.Audio.Volume != nil {
			p.Volume = *raw.Audio.Volume
		}
		if raw.Audio.Sound != nil {
			p.Sound = *raw.Audio.Sound
		}
	}
	return p, nil
}

// SpinConfig returns the orchestrator timing of the profile.
func (p Profile) SpinConfig() spin.Config {
	return spin.Config{
		Duration:     p.Duration,
		MinTurns:     p.MinTurns,
		MaxTurns:     p.MaxTurns,
		TickInterval: p.TickInterval,
	}
}
