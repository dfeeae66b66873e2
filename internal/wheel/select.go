package wheel

import (
	"fmt"
	"math"
)

// totalWeight sums weights, rejecting an empty set or a non-positive weight.
func totalWeight(options []Option) (float64, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("%w: no enabled options", ErrInvalidState)
	}
	var total float64
	for _, o := range options {
		if o.Weight <= 0 {
			return 0, fmt.Errorf("%w: option %q has weight %d", ErrInvalidState, o.ID, o.Weight)
		}
		total += float64(o.Weight)
	}
	if math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: total weight overflow", ErrInvalidState)
	}
	return total, nil
}

// SelectIndex samples an index of options in proportion to weight.
// r ~ U[0, total); the first option whose cumulative weight exceeds r wins,
// i.e. option i owns [cumBefore, cumBefore+weight).
// If rounding leaves the walk without a match (r == total), the last option
// is returned.
func SelectIndex(options []Option, rng RandomSource) (int, error) {
	total, err := totalWeight(options)
	if err != nil {
		return 0, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	r := rng.Float64() * total
	var cum float64
	for i, o := range options {
		cum += float64(o.Weight)
		if cum > r {
			return i, nil
		}
	}
	return len(options) - 1, nil
}

// Select is SelectIndex returning the option itself.
func Select(options []Option, rng RandomSource) (Option, error) {
	i, err := SelectIndex(options, rng)
	if err != nil {
		return Option{}, err
	}
	return options[i], nil
}
