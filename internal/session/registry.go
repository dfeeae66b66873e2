package session

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"

	"github.com/xtding233/spin-wheel/internal/lib/logger/sl"
	"github.com/xtding233/spin-wheel/internal/profile"
)

// Registry keeps one live session per wheel id. Sessions idle for longer
// than the TTL are evicted and closed; their state stays in storage.
type Registry struct {
	mu      sync.Mutex
	cache   *cache.Cache
	profile profile.Profile
	deps    Deps
	log     *slog.Logger
}

func NewRegistry(ttl time.Duration, prof profile.Profile, deps Deps) *Registry {
	cleanup := ttl / 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	r := &Registry{
		cache:   cache.New(ttl, cleanup),
		profile: prof,
		deps:    deps,
		log:     sl.OrDiscard(deps.Log),
	}
	r.cache.OnEvicted(func(id string, v interface{}) {
		r.log.Info("session evicted", sl.String("wheel", id))
		v.(*Session).Close()
	})
	return r
}

// Get returns the live session for id, opening it on first use. Every
// call refreshes the idle timer. A cached session that was already closed,
// e.g. by an eviction racing the refresh, is replaced.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache.Get(id); ok && !v.(*Session).Closed() {
		r.cache.SetDefault(id, v)
		return v.(*Session), nil
	}
	s, err := Open(ctx, id, r.profile, r.deps)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(id, s)
	return s, nil
}

// SetProfile swaps the profile used by sessions opened from now on.
func (r *Registry) SetProfile(p profile.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = p
	r.log.Info("profile applied", sl.String("profile", p.Name), sl.String("version", p.Version))
}

func (r *Registry) Profile() profile.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profile
}

// Len reports the number of live sessions.
func (r *Registry) Len() int { return r.cache.ItemCount() }

// Close closes every live session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.cache.Items() {
		item.Object.(*Session).Close()
	}
	r.cache.Flush()
}
