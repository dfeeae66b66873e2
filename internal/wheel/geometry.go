package wheel

import (
	"fmt"
	"math"
)

// FullTurn is one revolution in degrees.
const FullTurn = 360.0

// wrapEpsilon is how close to a full turn a pointer angle must be to count
// as the start of the first slice.
const wrapEpsilon = 1e-9

// Slice is the arc assigned to one enabled option. Angles are degrees
// measured clockwise from the pointer, which rests at 0 (top).
type Slice struct {
	Option Option  `json:"option"`
	Start  float64 `json:"start"`
	Sweep  float64 `json:"sweep"`
}

func (s Slice) End() float64    { return s.Start + s.Sweep }
func (s Slice) Center() float64 { return s.Start + s.Sweep/2 }

// Layout lays the options out contiguously from the pointer, each sweeping
// weight/total of a full turn. The final slice ends at exactly 360.
func Layout(options []Option) ([]Slice, error) {
	total, err := totalWeight(options)
	if err != nil {
		return nil, err
	}
	out := make([]Slice, len(options))
	var before float64
	for i, o := range options {
		start := before / total * FullTurn
		before += float64(o.Weight)
		end := before / total * FullTurn
		if i == len(options)-1 {
			end = FullTurn
		}
		out[i] = Slice{Option: o, Start: start, Sweep: end - start}
	}
	return out, nil
}

// TargetRotation returns the rotation that brings the center of selected's
// slice under the pointer. Turning the dial clockwise by R moves the content
// at angle -R to the pointer, so R = -center.
func TargetRotation(selected Option, layout []Slice) (float64, error) {
	if len(layout) == 0 {
		return 0, fmt.Errorf("%w: empty layout", ErrInvalidState)
	}
	for _, s := range layout {
		if s.Option.ID == selected.ID {
			return -s.Center(), nil
		}
	}
	return 0, fmt.Errorf("%w: option %q is not on the wheel", ErrInvalidState, selected.ID)
}

// SliceAtAngle returns the option under the pointer after the dial has been
// rotated by applied degrees. Callers reduce padded rotations with Normalize
// first; SliceAtAngle normalizes again so either form works.
func SliceAtAngle(applied float64, layout []Slice) (Option, error) {
	if len(layout) == 0 {
		return Option{}, fmt.Errorf("%w: empty layout", ErrInvalidState)
	}
	if math.IsNaN(applied) || math.IsInf(applied, 0) {
		return Option{}, fmt.Errorf("%w: rotation %v", ErrInvalidState, applied)
	}
	a := Normalize(-applied)
	if FullTurn-a < wrapEpsilon {
		a = 0
	}
	for _, s := range layout {
		if a < s.End() {
			return s.Option, nil
		}
	}
	return layout[len(layout)-1].Option, nil
}

// Normalize reduces deg to [0, 360).
func Normalize(deg float64) float64 {
	m := math.Mod(deg, FullTurn)
	if m < 0 {
		m += FullTurn
	}
	if m >= FullTurn || m == 0 {
		return 0
	}
	return m
}
