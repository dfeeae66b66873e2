package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xtding233/spin-wheel/internal/profile"
	"github.com/xtding233/spin-wheel/internal/session"
	"github.com/xtding233/spin-wheel/internal/wheel"
)

func TestRegistryReusesSessions(t *testing.T) {
	ctx := context.Background()
	r := session.NewRegistry(time.Minute, profile.Builtin(), newFixture().deps)
	defer r.Close()

	a, err := r.Get(ctx, "team")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Get(ctx, "team")
	if err != nil {
		t.Fatal(err)
	}
	if a != b || r.Len() != 1 {
		t.Fatalf("want one shared session, len=%d", r.Len())
	}
	if _, err := r.Get(ctx, "bad id"); !errors.Is(err, wheel.ErrValidation) {
		t.Fatalf("bad id: %v", err)
	}
}

func TestRegistryReplacesClosedSession(t *testing.T) {
	ctx := context.Background()
	r := session.NewRegistry(time.Minute, profile.Builtin(), newFixture().deps)
	defer r.Close()

	stale, err := r.Get(ctx, "team")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stale.AddOption(ctx, "kept"); err != nil {
		t.Fatal(err)
	}
	stale.Close()

	fresh, err := r.Get(ctx, "team")
	if err != nil {
		t.Fatal(err)
	}
	if fresh == stale || fresh.Closed() || r.Len() != 1 {
		t.Fatalf("closed session handed out again, len=%d", r.Len())
	}
	st, err := fresh.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(st.Options); n != 4 || st.Options[3].Text != "kept" {
		t.Fatalf("reopened state: %+v", st.Options)
	}
}

func TestRegistrySetProfileAppliesToNewSessions(t *testing.T) {
	ctx := context.Background()
	r := session.NewRegistry(time.Minute, profile.Builtin(), newFixture().deps)
	defer r.Close()

	old, err := r.Get(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	p := profile.Builtin()
	p.Name = "boost"
	p.Weights = []int{1, 3, 5}
	p.Defaults = []string{"x", "y"}
	r.SetProfile(p)

	fresh, err := r.Get(ctx, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	v, err := fresh.View(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Profile != "boost" || len(v.State.Options) != 2 || v.Tiers[2] != 5 {
		t.Fatalf("fresh view: %+v", v)
	}
	v, err = old.View(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Profile != "classic" {
		t.Fatalf("live session changed profile: %s", v.Profile)
	}
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	r := session.NewRegistry(50*time.Millisecond, profile.Builtin(), f.deps)
	defer r.Close()

	s, err := r.Get(ctx, "idle")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddOption(ctx, "kept"); err != nil {
		t.Fatal(err)
	}
	// OnEvicted runs after the item leaves the cache
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err = s.Snapshot(ctx); errors.Is(err, session.ErrClosed) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !errors.Is(err, session.ErrClosed) || r.Len() != 0 {
		t.Fatalf("session not evicted: len=%d err=%v", r.Len(), err)
	}

	stored, ok, err := f.repo.LoadOptions(ctx, "idle")
	if err != nil || !ok {
		t.Fatalf("stored options: %v %v", ok, err)
	}
	if len(stored) != 4 || stored[3].Text != "kept" {
		t.Fatalf("state lost across eviction: %+v", stored)
	}
}
