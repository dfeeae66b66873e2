package wheel_test

import (
	"errors"
	"math"
	"testing"

	"github.com/xtding233/spin-wheel/internal/wheel"
)

func TestLayoutCoverage(t *testing.T) {
	for _, weights := range [][]int{{1}, {1, 1, 1}, {1, 2, 3}, {5, 3, 1, 1, 3, 5}, {1, 1000}} {
		layout, err := wheel.Layout(opts(weights...))
		if err != nil {
			t.Fatal(err)
		}
		if layout[0].Start != 0 {
			t.Fatalf("%v: first slice starts at %v", weights, layout[0].Start)
		}
		var sum float64
		for i, s := range layout {
			if s.Sweep <= 0 {
				t.Fatalf("%v: slice %d has sweep %v", weights, i, s.Sweep)
			}
			if i > 0 && math.Abs(layout[i-1].End()-s.Start) > 1e-9 {
				t.Fatalf("%v: gap between slice %d and %d", weights, i-1, i)
			}
			sum += s.Sweep
		}
		if math.Abs(sum-360) > 1e-6 {
			t.Fatalf("%v: sweeps sum to %v", weights, sum)
		}
		if last := layout[len(layout)-1]; last.End() != 360 {
			t.Fatalf("%v: last slice ends at %v", weights, last.End())
		}
	}
}

func TestLayoutEmpty(t *testing.T) {
	if _, err := wheel.Layout(nil); !errors.Is(err, wheel.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
	if _, err := wheel.TargetRotation(wheel.Option{ID: "A"}, nil); !errors.Is(err, wheel.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
	if _, err := wheel.SliceAtAngle(0, nil); !errors.Is(err, wheel.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestTargetRotationUnknownOption(t *testing.T) {
	layout, _ := wheel.Layout(opts(1, 1))
	if _, err := wheel.TargetRotation(wheel.Option{ID: "Z"}, layout); !errors.Is(err, wheel.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	rng := wheel.NewSeededRNG(99)
	for trial := 0; trial < 500; trial++ {
		k := 1 + int(rng.Float64()*24)
		weights := make([]int, k)
		for i := range weights {
			weights[i] = 1 + int(rng.Float64()*5)
		}
		o := opts(weights...)
		layout, err := wheel.Layout(o)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range o {
			target, err := wheel.TargetRotation(want, layout)
			if err != nil {
				t.Fatal(err)
			}
			for turns := 0; turns <= 10; turns++ {
				padded := target + float64(turns)*wheel.FullTurn
				got, err := wheel.SliceAtAngle(wheel.Normalize(padded), layout)
				if err != nil {
					t.Fatal(err)
				}
				if got.ID != want.ID {
					t.Fatalf("weights %v turns %d: want %s got %s", weights, turns, want.ID, got.ID)
				}
			}
		}
	}
}

func TestSliceAtAngleBoundaries(t *testing.T) {
	layout, _ := wheel.Layout(opts(1, 1, 1))
	cases := []struct {
		applied float64
		want    string
	}{
		{0, "A"},       // pointer on A's leading edge
		{-60, "A"},     // A's center
		{-120, "B"},    // B owns [120,240)
		{-240, "C"},    // C owns [240,360)
		{60, "C"},      // content at 300
		{1e-12, "A"},   // just short of a full turn wraps to A
		{360 * 8, "A"}, // pure full turns
		{-180 + 720, "B"},
	}
	for _, c := range cases {
		got, err := wheel.SliceAtAngle(c.applied, layout)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != c.want {
			t.Fatalf("applied=%v: got %s want %s", c.applied, got.ID, c.want)
		}
	}
	if _, err := wheel.SliceAtAngle(math.NaN(), layout); !errors.Is(err, wheel.ErrInvalidState) {
		t.Fatalf("NaN rotation: want ErrInvalidState, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Copysign(0, -1), 0},
		{360, 0},
		{-90, 270},
		{725, 5},
		{-1e-15, 0},
		{2340, 180},
	}
	for _, c := range cases {
		got := wheel.Normalize(c.in)
		if math.Abs(got-c.want) > 1e-9 || math.Signbit(got) {
			t.Fatalf("Normalize(%v) = %v want %v", c.in, got, c.want)
		}
	}
}

func TestEndToEndThreeEqualOptions(t *testing.T) {
	o := opts(1, 1, 1)
	// u=0.5 => r=1.5, inside B's interval [1,2)
	selected, err := wheel.Select(o, wheel.NewSequence(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if selected.ID != "B" {
		t.Fatalf("select: got %s want B", selected.ID)
	}
	layout, err := wheel.Layout(o)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range layout {
		if math.Abs(s.Sweep-120) > 1e-9 || math.Abs(s.Start-float64(i)*120) > 1e-9 {
			t.Fatalf("slice %d: start=%v sweep=%v", i, s.Start, s.Sweep)
		}
	}
	target, err := wheel.TargetRotation(selected, layout)
	if err != nil {
		t.Fatal(err)
	}
	if target != -180 {
		t.Fatalf("target: got %v want -180", target)
	}
	padded := target + 9*wheel.FullTurn
	got, err := wheel.SliceAtAngle(wheel.Normalize(padded), layout)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "B" {
		t.Fatalf("settled: got %s want B", got.ID)
	}
}
