package wheel

import (
	"github.com/google/uuid"
)

// Store owns the option list and playback settings of one wheel.
// It is not safe for concurrent use; a session serializes access.
// Every mutation either applies completely or returns an error and leaves
// the store untouched.
type Store struct {
	state State
	tiers []int
	newID func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDFunc overrides the option id generator (uuid by default).
func WithIDFunc(f func() string) StoreOption {
	return func(s *Store) { s.newID = f }
}

// NewStore creates a store seeded with a copy of initial. tiers lists the
// weights SetWeight accepts; the first tier is the weight of new options.
func NewStore(tiers []int, initial State, opts ...StoreOption) *Store {
	s := &Store{
		state: initial.Clone(),
		tiers: append([]int(nil), tiers...),
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.state.Volume = RoundVolume(s.state.Volume)
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State { return s.state.Clone() }

// Tiers returns the allowed weights.
func (s *Store) Tiers() []int { return append([]int(nil), s.tiers...) }

func (s *Store) defaultWeight() int {
	if len(s.tiers) > 0 {
		return s.tiers[0]
	}
	return 1
}

// Layout recomputes the slice layout of the enabled options.
func (s *Store) Layout() ([]Slice, error) {
	return Layout(s.state.Enabled())
}

// Add appends an enabled option with the default weight.
func (s *Store) Add(text string) (Option, error) {
	text = NormalizeText(text)
	if err := validateText(text); err != nil {
		return Option{}, err
	}
	o := Option{ID: s.newID(), Text: text, Weight: s.defaultWeight(), Enabled: true}
	if _, dup := s.state.Index(o.ID); dup {
		return Option{}, invalid("id", "is duplicated")
	}
	s.state.Options = append(s.state.Options, o)
	return o, nil
}

// Remove deletes the option with the given id.
func (s *Store) Remove(id string) error {
	i, ok := s.state.Index(id)
	if !ok {
		return invalid("id", "not found")
	}
	opts := make([]Option, 0, len(s.state.Options)-1)
	opts = append(opts, s.state.Options[:i]...)
	s.state.Options = append(opts, s.state.Options[i+1:]...)
	return nil
}

// Toggle flips the enabled flag and returns the updated option.
func (s *Store) Toggle(id string) (Option, error) {
	i, ok := s.state.Index(id)
	if !ok {
		return Option{}, invalid("id", "not found")
	}
	s.state.Options[i].Enabled = !s.state.Options[i].Enabled
	return s.state.Options[i], nil
}

// SetWeight changes the weight of an option to one of the allowed tiers.
func (s *Store) SetWeight(id string, weight int) (Option, error) {
	i, ok := s.state.Index(id)
	if !ok {
		return Option{}, invalid("id", "not found")
	}
	if err := validateWeight(weight, s.tiers); err != nil {
		return Option{}, err
	}
	s.state.Options[i].Weight = weight
	return s.state.Options[i], nil
}

// SetVolume sets the playback volume fraction, rounded to a whole percent.
func (s *Store) SetVolume(v float64) error {
	if err := validateVolume(v); err != nil {
		return err
	}
	s.state.Volume = RoundVolume(v)
	return nil
}

// SetSound enables or disables sound.
func (s *Store) SetSound(on bool) { s.state.SoundEnabled = on }

// Replace swaps in a whole snapshot, e.g. one decoded from a share token.
func (s *Store) Replace(next State) error {
	if err := ValidateState(next); err != nil {
		return err
	}
	s.state = next.Clone()
	s.state.Volume = RoundVolume(s.state.Volume)
	return nil
}
