package stats_test

import (
	"errors"
	"math"
	"testing"

	"github.com/xtding233/spin-wheel/internal/stats"
	"github.com/xtding233/spin-wheel/internal/wheel"
)

func options(weights ...int) []wheel.Option {
	out := make([]wheel.Option, len(weights))
	for i, w := range weights {
		id := string(rune('A' + i))
		out[i] = wheel.Option{ID: id, Text: id, Weight: w, Enabled: true}
	}
	return out
}

func TestRunMonteCarloPasses(t *testing.T) {
	opts := options(1, 2, 3, 5)
	opts = append(opts, wheel.Option{ID: "off", Text: "off", Weight: 5, Enabled: false})

	rep, err := stats.RunMonteCarlo(opts, 50000, wheel.NewSeededRNG(7))
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Buckets) != 4 || rep.DF != 3 {
		t.Fatalf("disabled option counted: %+v", rep)
	}
	sum := 0
	for _, b := range rep.Buckets {
		sum += b.Count
	}
	if sum != rep.Trials {
		t.Fatalf("counts sum %d, trials %d", sum, rep.Trials)
	}
	if rep.Mismatches != 0 {
		t.Fatalf("geometry mismatches: %d", rep.Mismatches)
	}
	if !rep.Pass {
		t.Fatalf("chi-squared %.2f above %.2f", rep.ChiSquared, rep.Critical)
	}
	if got := rep.Buckets[3].Expected; math.Abs(got-50000*5.0/11) > 1e-6 {
		t.Fatalf("expected count: %v", got)
	}
}

func TestRunMonteCarloDetectsBias(t *testing.T) {
	// always the first option, regardless of weights
	rep, err := stats.RunMonteCarlo(options(1, 1, 1), 3000, wheel.NewSequence(0))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Pass || rep.Buckets[0].Count != 3000 {
		t.Fatalf("bias not detected: %+v", rep)
	}
}

func TestRunMonteCarloErrors(t *testing.T) {
	if _, err := stats.RunMonteCarlo(options(1), 0, nil); !errors.Is(err, stats.ErrTrials) {
		t.Fatalf("zero trials: %v", err)
	}
	if _, err := stats.RunMonteCarlo(options(1), stats.MaxTrials+1, nil); !errors.Is(err, stats.ErrTrials) {
		t.Fatalf("too many trials: %v", err)
	}
	if _, err := stats.RunMonteCarlo(nil, 10, nil); !errors.Is(err, wheel.ErrInvalidState) {
		t.Fatalf("empty wheel: %v", err)
	}
	if _, err := stats.RunMonteCarlo(options(wheel.MaxWeight+1, 1), 10, nil); !errors.Is(err, wheel.ErrValidation) {
		t.Fatalf("oversized weight: %v", err)
	}
}

func TestChiSquaredCritical(t *testing.T) {
	// table values at p=0.999
	for df, want := range map[int]float64{1: 10.83, 3: 16.27, 10: 29.59} {
		got := stats.ChiSquaredCritical(df)
		if math.Abs(got-want)/want > 0.05 {
			t.Fatalf("df=%d: got %.2f want ~%.2f", df, got, want)
		}
	}
}
