package wheel

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxTextLen is the maximum option label length in runes.
	MaxTextLen = 100

	// MaxWeight bounds option weights so the smallest slice stays wide
	// enough to be read back under the pointer.
	MaxWeight = 100
)

// NormalizeText trims the label and converts it to NFC so visually equal
// labels compare equal.
func NormalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

func validateText(text string) error {
	if text == "" {
		return invalid("text", "must not be empty")
	}
	if utf8.RuneCountInString(text) > MaxTextLen {
		return invalid("text", "is too long")
	}
	return nil
}

// validateWeight checks w against the allowed tiers. An empty tier set
// accepts any weight in [1, MaxWeight].
func validateWeight(w int, tiers []int) error {
	if w <= 0 {
		return invalid("weight", "must be positive")
	}
	if w > MaxWeight {
		return invalid("weight", "is too large")
	}
	if len(tiers) == 0 {
		return nil
	}
	for _, t := range tiers {
		if t == w {
			return nil
		}
	}
	return invalid("weight", "is not an allowed tier")
}

// RoundVolume snaps v to a whole percent, the precision share tokens carry.
func RoundVolume(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateVolume(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
		return invalid("volume", "must be in [0,1]")
	}
	return nil
}

// ValidateOptions checks ids are unique and non-empty, labels are non-empty
// and weights in [1, MaxWeight]. Tiers are not enforced here so snapshots
// from another profile can still be loaded.
func ValidateOptions(options []Option) error {
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if o.ID == "" {
			return invalid("id", "must not be empty")
		}
		if _, dup := seen[o.ID]; dup {
			return invalid("id", "is duplicated")
		}
		seen[o.ID] = struct{}{}
		if err := validateText(o.Text); err != nil {
			return err
		}
		if err := validateWeight(o.Weight, nil); err != nil {
			return err
		}
	}
	return nil
}

// ValidateState checks options and volume.
func ValidateState(s State) error {
	if err := ValidateOptions(s.Options); err != nil {
		return err
	}
	return validateVolume(s.Volume)
}
