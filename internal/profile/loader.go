package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "profiles", "default.yaml")
}
func (p Paths) ProfilePath(name string) string {
	return filepath.Join(p.BaseDir, "profiles", name+".yaml")
}

// Loader reads YAML configs and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the files a profile is built from, for watching.
func (l *Loader) Paths(name string) []string {
	return []string{l.paths.DefaultPath(), l.paths.ProfilePath(name)}
}

// LoadMerged loads and merges default → profile. Missing files contribute
// nothing. It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(name string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	profCfg, err := readYAML(l.paths.ProfilePath(name))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read profile %s: %w", name, err)
	}
	merged := mergeRaw(defCfg, profCfg)

	l.mu.Lock()
	l.cache[name] = merged
	l.mu.Unlock()

	return merged, nil
}

// Load merges, validates and normalizes the named profile.
func (l *Loader) Load(name string) (Profile, error) {
	raw, err := l.LoadMerged(name)
	if err != nil {
		return Profile{}, err
	}
	return Resolve(name, raw)
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw overlays b onto a: set scalars and non-empty slices in b win.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	out.Weights = append([]int(nil), a.Weights...)
	out.Defaults = append([]string(nil), a.Defaults...)

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if len(b.Weights) > 0 {
		out.Weights = append([]int(nil), b.Weights...)
	}
	if len(b.Defaults) > 0 {
		out.Defaults = append([]string(nil), b.Defaults...)
	}

	// spin
	if b.Spin.DurationMS != nil {
		out.Spin.DurationMS = b.Spin.DurationMS
	}
	if b.Spin.MinTurns != nil {
		out.Spin.MinTurns = b.Spin.MinTurns
	}
	if b.Spin.MaxTurns != nil {
		out.Spin.MaxTurns = b.Spin.MaxTurns
	}
	if b.Spin.TickIntervalMS != nil {
		out.Spin.TickIntervalMS = b.Spin.TickIntervalMS
	}

	// audio
	switch {
	case out.Audio == nil && b.Audio != nil:
		c := *b.Audio
		out.Audio = &c
	case out.Audio != nil && b.Audio != nil:
		c := *out.Audio
		if b.Audio.Volume != nil {
			c.Volume = b.Audio.Volume
		}
		if b.Audio.Sound != nil {
			c.Sound = b.Audio.Sound
		}
		out.Audio = &c
	}

	return out
}
