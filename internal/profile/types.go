// types.go
package profile

import "time"

// Raw config loaded from YAML; fields left out fall through to the next layer.
type RawConfig struct {
	Version  string       `yaml:"version"`
	Weights  []int        `yaml:"weights,omitempty"`
	Spin     SpinConfig   `yaml:"spin"`
	Audio    *AudioConfig `yaml:"audio,omitempty"`
	Defaults []string     `yaml:"defaults,omitempty"`
	Notes    string       `yaml:"notes,omitempty"`
}

type SpinConfig struct {
	DurationMS     *int `yaml:"duration_ms"`
	MinTurns       *int `yaml:"min_turns"`
	MaxTurns       *int `yaml:"max_turns"`
	TickIntervalMS *int `yaml:"tick_interval_ms"`
}

type AudioConfig struct {
	Volume *float64 `yaml:"volume"`
	Sound  *bool    `yaml:"sound"`
}

// Profile is the normalized configuration a wheel session runs with.
type Profile struct {
	Name         string
	Version      string
	Weights      []int // allowed tiers; the first is the weight of new options
	Duration     time.Duration
	MinTurns     int
	MaxTurns     int
	TickInterval time.Duration
	Volume       float64
	Sound        bool
	Defaults     []string // labels of a fresh wheel
}
