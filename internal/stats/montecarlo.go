// Package stats runs Monte Carlo checks of the weighted selector.
package stats

import (
	"errors"
	"math"

	"github.com/xtding233/spin-wheel/internal/wheel"
)

var ErrTrials = errors.New("trials must be in [1, MaxTrials]")

// MaxTrials bounds a single run.
const MaxTrials = 1_000_000

// z-score of the 0.999 quantile, used for the chi-squared critical value.
const z999 = 3.090

// Bucket is the result for one option.
type Bucket struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Weight   int     `json:"weight"`
	Count    int     `json:"count"`
	Expected float64 `json:"expected"`
	Observed float64 `json:"observed"`
}

// Report summarizes a run. Pass is false when the chi-squared statistic
// exceeds the 99.9% critical value or any sample failed the geometry round trip.
type Report struct {
	Trials     int      `json:"trials"`
	Buckets    []Bucket `json:"buckets"`
	ChiSquared float64  `json:"chi_squared"`
	DF         int      `json:"df"`
	Critical   float64  `json:"critical"`
	Mismatches int      `json:"mismatches"`
	Pass       bool     `json:"pass"`
}

// RunMonteCarlo draws trials samples from the enabled options and checks
// the observed frequencies against the weights. Each sample is also rotated
// to its target angle and read back, counting disagreements in Mismatches.
func RunMonteCarlo(options []wheel.Option, trials int, rng wheel.RandomSource) (Report, error) {
	if trials <= 0 || trials > MaxTrials {
		return Report{}, ErrTrials
	}
	if rng == nil {
		rng = wheel.DefaultRNG()
	}
	enabled := make([]wheel.Option, 0, len(options))
	for _, o := range options {
		if o.Enabled {
			enabled = append(enabled, o)
		}
	}
	if err := wheel.ValidateOptions(enabled); err != nil {
		return Report{}, err
	}
	layout, err := wheel.Layout(enabled)
	if err != nil {
		return Report{}, err
	}

	counts := make([]int, len(enabled))
	mismatches := 0
	for i := 0; i < trials; i++ {
		idx, err := wheel.SelectIndex(enabled, rng)
		if err != nil {
			return Report{}, err
		}
		counts[idx]++

		target, err := wheel.TargetRotation(enabled[idx], layout)
		if err != nil {
			return Report{}, err
		}
		got, err := wheel.SliceAtAngle(wheel.Normalize(target), layout)
		if err != nil || got.ID != enabled[idx].ID {
			mismatches++
		}
	}

	var total int
	for _, o := range enabled {
		total += o.Weight
	}
	rep := Report{
		Trials:     trials,
		Buckets:    make([]Bucket, len(enabled)),
		DF:         len(enabled) - 1,
		Mismatches: mismatches,
	}
	for i, o := range enabled {
		p := float64(o.Weight) / float64(total)
		exp := p * float64(trials)
		rep.Buckets[i] = Bucket{
			ID:       o.ID,
			Text:     o.Text,
			Weight:   o.Weight,
			Count:    counts[i],
			Expected: exp,
			Observed: float64(counts[i]) / float64(trials),
		}
		d := float64(counts[i]) - exp
		rep.ChiSquared += d * d / exp
	}
	rep.Critical = ChiSquaredCritical(rep.DF)
	rep.Pass = mismatches == 0 && rep.ChiSquared <= rep.Critical
	return rep, nil
}

// ChiSquaredCritical approximates the 99.9% quantile of the chi-squared
// distribution with df degrees of freedom (Wilson–Hilferty). df 0 yields 0.
func ChiSquaredCritical(df int) float64 {
	if df <= 0 {
		return 0
	}
	k := float64(df)
	a := 2 / (9 * k)
	return k * math.Pow(1-a+z999*math.Sqrt(a), 3)
}
