package wheel_test

import (
	"errors"
	"testing"

	"github.com/xtding233/spin-wheel/internal/wheel"
)

func opts(weights ...int) []wheel.Option {
	out := make([]wheel.Option, len(weights))
	for i, w := range weights {
		id := string(rune('A' + i))
		out[i] = wheel.Option{ID: id, Text: id, Weight: w, Enabled: true}
	}
	return out
}

func TestSelectEmpty(t *testing.T) {
	if _, err := wheel.Select(nil, wheel.NewSeededRNG(1)); !errors.Is(err, wheel.ErrInvalidState) {
		t.Fatalf("empty select: want ErrInvalidState, got %v", err)
	}
}

func TestSelectSingleAlwaysWins(t *testing.T) {
	rng := wheel.NewSeededRNG(7)
	one := opts(1)
	for i := 0; i < 1000; i++ {
		got, err := wheel.Select(one, rng)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != "A" {
			t.Fatalf("draw %d: got %q", i, got.ID)
		}
	}
}

func TestSelectHalfOpenIntervals(t *testing.T) {
	// weights 1,1,1 => A:[0,1) B:[1,2) C:[2,3); r = u*3
	cases := []struct {
		u    float64
		want string
	}{
		{0, "A"},
		{0.3, "A"},
		{1.0 / 3, "B"},
		{0.5, "B"},
		{2.0 / 3, "C"},
		{0.99, "C"},
	}
	for _, c := range cases {
		got, err := wheel.Select(opts(1, 1, 1), wheel.NewSequence(c.u))
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != c.want {
			t.Fatalf("u=%v: got %s want %s", c.u, got.ID, c.want)
		}
	}
}

func TestSelectFallsBackToLast(t *testing.T) {
	// u == 1 puts r exactly at the total weight; no interval contains it.
	got, err := wheel.Select(opts(1, 2, 3), wheel.NewSequence(1))
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "C" {
		t.Fatalf("boundary fallback: got %s want C", got.ID)
	}
}

func TestSelectSkipsDisabled(t *testing.T) {
	st := wheel.State{Options: opts(1, 5, 1)}
	st.Options[1].Enabled = false
	rng := wheel.NewSeededRNG(3)
	for i := 0; i < 5000; i++ {
		got, err := wheel.Select(st.Enabled(), rng)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID == "B" {
			t.Fatalf("disabled option selected at draw %d", i)
		}
	}
}

func TestSelectRejectsNonPositiveWeight(t *testing.T) {
	if _, err := wheel.Select(opts(1, 0), wheel.NewSeededRNG(1)); !errors.Is(err, wheel.ErrInvalidState) {
		t.Fatalf("zero weight: want ErrInvalidState, got %v", err)
	}
}

func TestSelectWeightProportionality(t *testing.T) {
	for _, weights := range [][]int{{1, 2, 3}, {1, 3, 5}, {1, 1, 1, 1}} {
		const n = 60000
		o := opts(weights...)
		rng := wheel.NewSeededRNG(42)
		counts := make([]int, len(o))
		for i := 0; i < n; i++ {
			idx, err := wheel.SelectIndex(o, rng)
			if err != nil {
				t.Fatal(err)
			}
			counts[idx]++
		}
		total := 0
		for _, w := range weights {
			total += w
		}
		var chi2 float64
		for i, w := range weights {
			exp := float64(n) * float64(w) / float64(total)
			d := float64(counts[i]) - exp
			chi2 += d * d / exp
		}
		// 99.99th percentile of chi-squared for df <= 3 is below 21.2
		if chi2 > 21.2 {
			t.Fatalf("weights %v: chi2=%.2f counts=%v", weights, chi2, counts)
		}
	}
}
