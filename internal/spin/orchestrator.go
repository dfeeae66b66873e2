// Package spin drives one spin of a wheel: sample, rotate, settle, verify.
//
// An Orchestrator is not safe for concurrent use. All of its methods and
// every callback it hands out (renderer completion, scheduled ticks) must run
// on the same goroutine; the session event loop guarantees this. The phase
// flag alone keeps a second spin from starting while one is in flight.
package spin

import (
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/xtding233/spin-wheel/internal/lib/logger/sl"
	"github.com/xtding233/spin-wheel/internal/wheel"
)

// Phase is the orchestrator state.
type Phase int

const (
	Idle Phase = iota
	Spinning
	Settling
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Spinning:
		return "spinning"
	case Settling:
		return "settling"
	default:
		return "unknown"
	}
}

// Renderer is the presentation collaborator that shows the dial.
// ApplyRotation must call done exactly once, after duration has elapsed.
type Renderer interface {
	RenderSlices(layout []wheel.Slice)
	ApplyRotation(degrees float64, duration time.Duration, done func())
}

// Audio plays feedback sounds. Calls are fire-and-forget.
type Audio interface {
	PlayTick()
	PlayCelebration()
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Config controls spin timing and the cosmetic full turns.
type Config struct {
	Duration     time.Duration
	MinTurns     int
	MaxTurns     int
	TickInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Duration:     4 * time.Second,
		MinTurns:     7,
		MaxTurns:     10,
		TickInterval: 100 * time.Millisecond,
	}
}

// Plan is everything fixed at the moment a spin starts.
type Plan struct {
	Intended wheel.Option  `json:"-"`
	Layout   []wheel.Slice `json:"layout"`
	Target   float64       `json:"target"`
	Rotation float64       `json:"rotation"`
	Turns    int           `json:"turns"`
	Duration time.Duration `json:"duration"`
}

// Outcome is the reported result of one spin. Selected is what the pointer
// actually rests on; Verified reports whether it matches the sampled Intended.
type Outcome struct {
	Selected wheel.Option `json:"selected"`
	Intended wheel.Option `json:"intended"`
	Rotation float64      `json:"rotation"`
	Settled  float64      `json:"settled"`
	Turns    int          `json:"turns"`
	Verified bool         `json:"verified"`
}

// Deps are the collaborators of an Orchestrator. Nil fields get defaults:
// crypto RNG, a renderer that completes immediately, no audio, no ticks.
type Deps struct {
	RNG       wheel.RandomSource
	Renderer  Renderer
	Audio     Audio
	Scheduler Scheduler
	Log       *slog.Logger
	OnOutcome func(Outcome)
}

type Orchestrator struct {
	cfg       Config
	rng       wheel.RandomSource
	renderer  Renderer
	audio     Audio
	sched     Scheduler
	log       *slog.Logger
	onOutcome func(Outcome)

	phase Phase
	seq   uint64
	plan  Plan
	sound bool
	last  *Outcome
}

func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.MaxTurns < cfg.MinTurns {
		cfg.MaxTurns = cfg.MinTurns
	}
	o := &Orchestrator{
		cfg:       cfg,
		rng:       deps.RNG,
		renderer:  deps.Renderer,
		audio:     deps.Audio,
		sched:     deps.Scheduler,
		log:       sl.OrDiscard(deps.Log),
		onOutcome: deps.OnOutcome,
	}
	if o.rng == nil {
		o.rng = wheel.DefaultRNG()
	}
	if o.renderer == nil {
		o.renderer = ImmediateRenderer{}
	}
	if o.audio == nil {
		o.audio = nopAudio{}
	}
	return o
}

// Phase reports the current state.
func (o *Orchestrator) Phase() Phase { return o.phase }

// Last returns the most recent outcome, if any.
func (o *Orchestrator) Last() (Outcome, bool) {
	if o.last == nil {
		return Outcome{}, false
	}
	return *o.last, true
}

// Spin starts a spin over the enabled options of state. The outcome is fixed
// here; later changes to the wheel do not affect it. Spin does not wait for
// the animation: the outcome is delivered to OnOutcome when the renderer
// signals completion.
func (o *Orchestrator) Spin(state wheel.State) (Plan, error) {
	const op = "spin.Orchestrator.Spin"

	if o.phase != Idle {
		o.log.Debug("spin rejected", sl.String("op", op), sl.String("phase", o.phase.String()))
		return Plan{}, fmt.Errorf("%s: %w", op, wheel.ErrAlreadyInProgress)
	}
	enabled := state.Enabled()
	if len(enabled) == 0 {
		return Plan{}, fmt.Errorf("%s: %w: no enabled options", op, wheel.ErrInvalidState)
	}

	intended, err := wheel.Select(enabled, o.rng)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	layout, err := wheel.Layout(enabled)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	target, err := wheel.TargetRotation(intended, layout)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	turns := o.turns()

	o.seq++
	seq := o.seq
	o.plan = Plan{
		Intended: intended,
		Layout:   layout,
		Target:   target,
		Rotation: target + float64(turns)*wheel.FullTurn,
		Turns:    turns,
		Duration: o.cfg.Duration,
	}
	o.sound = state.SoundEnabled
	o.phase = Spinning
	plan := o.plan

	o.log.Info("spin started",
		sl.String("op", op),
		sl.String("intended", intended.ID),
		sl.Any("rotation", plan.Rotation),
	)

	o.renderer.RenderSlices(layout)
	if o.sound {
		o.tick(seq)
	}
	o.renderer.ApplyRotation(plan.Rotation, plan.Duration, func() { o.settle(seq) })
	return plan, nil
}

// turns picks the cosmetic full turns uniformly in [MinTurns, MaxTurns].
func (o *Orchestrator) turns() int {
	n := o.cfg.MaxTurns - o.cfg.MinTurns + 1
	t := o.cfg.MinTurns + int(o.rng.Float64()*float64(n))
	if t > o.cfg.MaxTurns {
		t = o.cfg.MaxTurns
	}
	return t
}

func (o *Orchestrator) tick(seq uint64) {
	if o.phase != Spinning || o.seq != seq {
		return
	}
	o.audio.PlayTick()
	if o.sched != nil && o.cfg.TickInterval > 0 {
		o.sched.AfterFunc(o.cfg.TickInterval, func() { o.tick(seq) })
	}
}

// settle runs when the renderer reports the rotation finished. The reported
// winner is the slice under the pointer, derived from the net rotation.
func (o *Orchestrator) settle(seq uint64) {
	const op = "spin.Orchestrator.settle"

	if o.phase != Spinning || o.seq != seq {
		return
	}
	o.phase = Settling
	plan := o.plan

	settled := wheel.Normalize(plan.Rotation)
	selected, err := wheel.SliceAtAngle(settled, plan.Layout)
	if err != nil {
		// unreachable for a plan built by Spin: the layout is never empty
		o.log.Error("cannot resolve settled slice", sl.String("op", op), sl.Err(err))
		selected = plan.Intended
	}
	out := Outcome{
		Selected: selected,
		Intended: plan.Intended,
		Rotation: plan.Rotation,
		Settled:  settled,
		Turns:    plan.Turns,
		Verified: selected.ID == plan.Intended.ID,
	}
	if !out.Verified {
		o.log.Error("settled slice disagrees with sampled option",
			sl.String("op", op),
			sl.String("intended", plan.Intended.ID),
			sl.String("selected", selected.ID),
			sl.Any("settled", settled),
		)
	}
	if o.sound {
		o.audio.PlayCelebration()
	}

	o.last = &out
	o.phase = Idle
	o.log.Info("spin settled", sl.String("op", op), sl.String("selected", selected.ID))
	if o.onOutcome != nil {
		o.onOutcome(out)
	}
}
