package spin

import (
	"time"

	"github.com/xtding233/spin-wheel/internal/wheel"
)

// ImmediateRenderer shows nothing and completes every rotation at once.
// Headless callers (gRPC, simulations) use it.
type ImmediateRenderer struct{}

func (ImmediateRenderer) RenderSlices([]wheel.Slice) {}

func (ImmediateRenderer) ApplyRotation(_ float64, _ time.Duration, done func()) { done() }

type nopAudio struct{}

func (nopAudio) PlayTick()        {}
func (nopAudio) PlayCelebration() {}
