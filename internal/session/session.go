// Package session owns live wheels. Each Session runs an event loop that
// serializes every operation, renderer completion and audio tick onto a
// single goroutine, and writes the store through to persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/xtding233/spin-wheel/internal/lib/logger/sl"
	"github.com/xtding233/spin-wheel/internal/persist"
	"github.com/xtding233/spin-wheel/internal/profile"
	"github.com/xtding233/spin-wheel/internal/share"
	"github.com/xtding233/spin-wheel/internal/spin"
	"github.com/xtding233/spin-wheel/internal/wheel"
)

var ErrClosed = errors.New("session closed")

var wheelIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateWheelID checks a wheel id is safe to use as a storage key.
func ValidateWheelID(id string) error {
	if !wheelIDPattern.MatchString(id) {
		return &wheel.ValidationError{Field: "wheel_id", Reason: "must be 1-64 letters, digits, '-' or '_'"}
	}
	return nil
}

// Presenter shows a wheel to its viewers.
type Presenter interface {
	spin.Renderer
	spin.Audio
}

// Deps are shared by every session of a registry.
type Deps struct {
	Repo *persist.Repository
	// Presenter returns the presenter of a wheel. Nil means headless.
	Presenter func(wheelID string) Presenter
	// RNG returns the random source of a new session. Nil means crypto.
	RNG func() wheel.RandomSource
	// OnOutcome is called on the session loop after every spin settles.
	OnOutcome func(wheelID string, out spin.Outcome)
	// IDFunc overrides option id generation.
	IDFunc func() string
	Log    *slog.Logger
}

// Ticket tracks one spin. Plan is fixed when the spin starts.
type Ticket struct {
	Plan spin.Plan

	out    spin.Outcome
	ready  chan struct{}
	closed <-chan struct{}
}

// Wait blocks until the spin settles.
func (t *Ticket) Wait(ctx context.Context) (spin.Outcome, error) {
	select {
	case <-t.ready:
		return t.out, nil
	case <-t.closed:
		return spin.Outcome{}, ErrClosed
	case <-ctx.Done():
		return spin.Outcome{}, ctx.Err()
	}
}

// View is a read-only picture of a session.
type View struct {
	ID      string        `json:"id"`
	Profile string        `json:"profile"`
	State   wheel.State   `json:"state"`
	Layout  []wheel.Slice `json:"layout"`
	Tiers   []int         `json:"tiers"`
	Phase   string        `json:"phase"`
	Last    *spin.Outcome `json:"last,omitempty"`
}

type Session struct {
	id      string
	profile string
	log     *slog.Logger
	repo    *persist.Repository
	store   *wheel.Store
	orch    *spin.Orchestrator

	pending *Ticket

	cmds      chan func()
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// Open loads the wheel id from deps.Repo, or seeds it from the profile's
// default labels and persists them, then starts the event loop.
func Open(ctx context.Context, id string, prof profile.Profile, deps Deps) (*Session, error) {
	const op = "session.Open"

	if err := ValidateWheelID(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log := sl.OrDiscard(deps.Log).With(sl.String("wheel", id))
	repo := deps.Repo
	if repo == nil {
		repo = persist.NewRepository(persist.NewMemory())
	}
	newID := deps.IDFunc
	if newID == nil {
		newID = uuid.NewString
	}

	initial, fresh, err := load(ctx, repo, id, prof, newID, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if fresh {
		if err := repo.Save(ctx, id, initial); err != nil {
			return nil, fmt.Errorf("%s: save defaults: %w", op, err)
		}
	}

	s := &Session{
		id:      id,
		profile: prof.Name,
		log:     log,
		repo:    repo,
		store:   wheel.NewStore(prof.Weights, initial, wheel.WithIDFunc(newID)),
		cmds:    make(chan func()),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	var renderer spin.Renderer = spin.ImmediateRenderer{}
	var audio spin.Audio
	if deps.Presenter != nil {
		if p := deps.Presenter(id); p != nil {
			renderer, audio = p, p
		}
	}
	var rng wheel.RandomSource
	if deps.RNG != nil {
		rng = deps.RNG()
	}
	onOutcome := deps.OnOutcome
	s.orch = spin.New(prof.SpinConfig(), spin.Deps{
		RNG:       rng,
		Renderer:  loopRenderer{s: s, inner: renderer},
		Audio:     audio,
		Scheduler: loopScheduler{s: s},
		Log:       log,
		OnOutcome: func(out spin.Outcome) {
			s.deliver(out)
			if onOutcome != nil {
				onOutcome(id, out)
			}
		},
	})

	go s.loop()
	log.Info("session opened", sl.String("profile", prof.Name), sl.Any("fresh", fresh))
	return s, nil
}

// load reads both records. Missing or unreadable options fall back to the
// profile defaults; a missing or unreadable volume falls back to the profile volume.
func load(ctx context.Context, repo *persist.Repository, id string, prof profile.Profile, newID func() string, log *slog.Logger) (wheel.State, bool, error) {
	st := wheel.State{SoundEnabled: prof.Sound, Volume: prof.Volume}
	fresh := false

	opts, ok, err := repo.LoadOptions(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return wheel.State{}, false, err
		}
		log.Warn("stored options unusable, using defaults", sl.Err(err))
	}
	if ok {
		st.Options = opts
	} else {
		st.Options = defaultOptions(prof, newID)
		fresh = true
	}

	v, ok, err := repo.LoadVolume(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return wheel.State{}, false, err
		}
		log.Warn("stored volume unusable, using default", sl.Err(err))
	}
	if ok {
		st.Volume = v
	} else {
		fresh = true
	}
	return st, fresh, nil
}

func defaultOptions(prof profile.Profile, newID func() string) []wheel.Option {
	weight := 1
	if len(prof.Weights) > 0 {
		weight = prof.Weights[0]
	}
	out := make([]wheel.Option, 0, len(prof.Defaults))
	for _, text := range prof.Defaults {
		out = append(out, wheel.Option{ID: newID(), Text: wheel.NormalizeText(text), Weight: weight, Enabled: true})
	}
	return out
}

func (s *Session) ID() string { return s.id }

func (s *Session) loop() {
	defer close(s.stopped)
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case <-s.quit:
			return
		}
	}
}

// do runs fn on the loop and waits for it to finish.
func (s *Session) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(finished) }:
	case <-s.stopped:
		return ErrClosed
	case <-s.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-s.stopped:
		return ErrClosed
	}
}

// post queues fn on the loop without waiting. Dropped once the session closes.
func (s *Session) post(fn func()) {
	go func() {
		select {
		case s.cmds <- fn:
		case <-s.quit:
		}
	}()
}

// Close stops the loop. Pending tickets fail with ErrClosed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.stopped
		s.log.Info("session closed")
	})
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

// deliver resolves the pending ticket. Runs on the loop.
func (s *Session) deliver(out spin.Outcome) {
	if t := s.pending; t != nil {
		s.pending = nil
		t.out = out
		close(t.ready)
	}
}

// mutate applies change and persists the records it touched. On a
// persistence failure the store is rolled back.
func (s *Session) mutate(ctx context.Context, op string, saveOptions, saveVolume bool, change func() error) error {
	var err error
	if doErr := s.do(ctx, func() {
		prev := s.store.Snapshot()
		if err = change(); err != nil {
			return
		}
		next := s.store.Snapshot()
		if saveOptions {
			err = s.repo.SaveOptions(ctx, s.id, next.Options)
		}
		if err == nil && saveVolume {
			err = s.repo.SaveVolume(ctx, s.id, next.Volume)
		}
		if err != nil {
			s.log.Error("persist failed, rolling back", sl.String("op", op), sl.Err(err))
			if rbErr := s.store.Replace(prev); rbErr != nil {
				s.log.Error("rollback failed", sl.String("op", op), sl.Err(rbErr))
			}
			// a partial write leaves storage ahead of the store; restore it
			if saveOptions && saveVolume {
				if rsErr := s.repo.Save(ctx, s.id, prev); rsErr != nil {
					s.log.Error("restore of stored records failed", sl.String("op", op), sl.Err(rsErr))
				}
			}
		}
	}); doErr != nil {
		return fmt.Errorf("%s: %w", op, doErr)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AddOption appends an option with the profile's default weight.
func (s *Session) AddOption(ctx context.Context, text string) (wheel.Option, error) {
	var o wheel.Option
	err := s.mutate(ctx, "session.AddOption", true, false, func() (err error) {
		o, err = s.store.Add(text)
		return err
	})
	return o, err
}

func (s *Session) RemoveOption(ctx context.Context, id string) error {
	return s.mutate(ctx, "session.RemoveOption", true, false, func() error {
		return s.store.Remove(id)
	})
}

func (s *Session) ToggleEnabled(ctx context.Context, id string) (wheel.Option, error) {
	var o wheel.Option
	err := s.mutate(ctx, "session.ToggleEnabled", true, false, func() (err error) {
		o, err = s.store.Toggle(id)
		return err
	})
	return o, err
}

// SetWeight sets an option's weight to one of the profile tiers.
func (s *Session) SetWeight(ctx context.Context, id string, weight int) (wheel.Option, error) {
	var o wheel.Option
	err := s.mutate(ctx, "session.SetWeight", true, false, func() (err error) {
		o, err = s.store.SetWeight(id, weight)
		return err
	})
	return o, err
}

func (s *Session) SetVolume(ctx context.Context, v float64) error {
	return s.mutate(ctx, "session.SetVolume", false, true, func() error {
		return s.store.SetVolume(v)
	})
}

// SetSound toggles audio. The flag is not persisted.
func (s *Session) SetSound(ctx context.Context, on bool) error {
	return s.mutate(ctx, "session.SetSound", false, false, func() error {
		s.store.SetSound(on)
		return nil
	})
}

// Spin starts a spin. The ticket resolves when the presenter finishes the
// rotation; a second Spin before then fails with wheel.ErrAlreadyInProgress.
func (s *Session) Spin(ctx context.Context) (*Ticket, error) {
	const op = "session.Spin"

	t := &Ticket{ready: make(chan struct{}), closed: s.stopped}
	var err error
	if doErr := s.do(ctx, func() {
		prev := s.pending
		s.pending = t
		var plan spin.Plan
		plan, err = s.orch.Spin(s.store.Snapshot())
		if err != nil {
			s.pending = prev
			return
		}
		t.Plan = plan
	}); doErr != nil {
		return nil, fmt.Errorf("%s: %w", op, doErr)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// LastOutcome returns the most recent settled spin.
func (s *Session) LastOutcome(ctx context.Context) (spin.Outcome, bool, error) {
	var (
		out spin.Outcome
		ok  bool
	)
	err := s.do(ctx, func() { out, ok = s.orch.Last() })
	return out, ok, err
}

func (s *Session) Snapshot(ctx context.Context) (wheel.State, error) {
	var st wheel.State
	err := s.do(ctx, func() { st = s.store.Snapshot() })
	return st, err
}

// Layout returns the current slice layout. It fails with
// wheel.ErrInvalidState when no option is enabled.
func (s *Session) Layout(ctx context.Context) ([]wheel.Slice, error) {
	var (
		layout []wheel.Slice
		err    error
	)
	if doErr := s.do(ctx, func() { layout, err = s.store.Layout() }); doErr != nil {
		return nil, doErr
	}
	return layout, err
}

// View returns state, layout (empty when nothing is enabled), tiers and phase.
func (s *Session) View(ctx context.Context) (View, error) {
	v := View{ID: s.id, Profile: s.profile}
	err := s.do(ctx, func() {
		v.State = s.store.Snapshot()
		v.Tiers = s.store.Tiers()
		v.Phase = s.orch.Phase().String()
		if layout, err := s.store.Layout(); err == nil {
			v.Layout = layout
		} else {
			v.Layout = []wheel.Slice{}
		}
		if last, ok := s.orch.Last(); ok {
			v.Last = &last
		}
	})
	return v, err
}

// ExportShareToken encodes the current options, volume and sound flag.
func (s *Session) ExportShareToken(ctx context.Context) (string, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("session.ExportShareToken: %w", err)
	}
	return share.Encode(st)
}

// ShareQuery returns the current state as share-link parameters.
func (s *Session) ShareQuery(ctx context.Context) (url.Values, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("session.ShareQuery: %w", err)
	}
	return share.Query(st)
}

// ImportShareToken replaces the whole wheel with a decoded token. A token
// that fails to decode leaves the wheel and its stored records untouched.
func (s *Session) ImportShareToken(ctx context.Context, token string) (wheel.State, error) {
	const op = "session.ImportShareToken"

	next, err := share.Decode(token)
	if err != nil {
		s.log.Warn("share token rejected", sl.String("op", op), sl.Err(err))
		return wheel.State{}, fmt.Errorf("%s: %w", op, err)
	}
	err = s.mutate(ctx, op, true, true, func() error { return s.store.Replace(next) })
	if err != nil {
		return wheel.State{}, err
	}
	return next, nil
}

// ApplyShareQuery overlays share-link parameters. Invalid parameters are
// returned as diagnostics and leave their part of the wheel unchanged.
func (s *Session) ApplyShareQuery(ctx context.Context, q url.Values) (wheel.State, []error, error) {
	const op = "session.ApplyShareQuery"

	if !share.HasParams(q) {
		st, err := s.Snapshot(ctx)
		return st, nil, err
	}
	var (
		next  wheel.State
		diags []error
	)
	err := s.mutate(ctx, op, true, true, func() error {
		next, diags = share.ApplyQuery(q, s.store.Snapshot())
		return s.store.Replace(next)
	})
	for _, d := range diags {
		s.log.Warn("share parameter ignored", sl.String("op", op), sl.Err(d))
	}
	if err != nil {
		return wheel.State{}, diags, err
	}
	return next, diags, nil
}

// loopRenderer forwards to the presenter and posts completion back onto
// the session loop.
type loopRenderer struct {
	s     *Session
	inner spin.Renderer
}

func (r loopRenderer) RenderSlices(layout []wheel.Slice) { r.inner.RenderSlices(layout) }

func (r loopRenderer) ApplyRotation(deg float64, d time.Duration, done func()) {
	r.inner.ApplyRotation(deg, d, func() { r.s.post(done) })
}

type loopScheduler struct{ s *Session }

func (l loopScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() { l.s.post(f) })
}
