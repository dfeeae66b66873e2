package wheel

// Option is one labelled choice on the wheel.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Weight  int    `json:"weight"`
	Enabled bool   `json:"enabled"`
}

// State is a snapshot of a wheel: the ordered options plus playback settings.
// Option order defines slice adjacency on the dial.
type State struct {
	Options      []Option `json:"options"`
	SoundEnabled bool     `json:"sound_enabled"`
	Volume       float64  `json:"volume"` // 0..1
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	out := s
	out.Options = append([]Option(nil), s.Options...)
	return out
}

// Enabled returns the enabled options in wheel order.
func (s State) Enabled() []Option {
	out := make([]Option, 0, len(s.Options))
	for _, o := range s.Options {
		if o.Enabled {
			out = append(out, o)
		}
	}
	return out
}

// Index returns the position of the option with the given id.
func (s State) Index(id string) (int, bool) {
	for i, o := range s.Options {
		if o.ID == id {
			return i, true
		}
	}
	return -1, false
}
