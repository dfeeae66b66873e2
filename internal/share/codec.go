// Package share encodes wheel snapshots into URL-safe tokens and back.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/xtding233/spin-wheel/internal/wheel"
)

var ErrDecode = errors.New("malformed share token")

// DecodeError wraps the reason a token was rejected.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string        { return fmt.Sprintf("%s: %v", ErrDecode, e.Err) }
func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func decodeErr(format string, args ...any) error {
	return &DecodeError{Err: fmt.Errorf(format, args...)}
}

var encoding = base64.RawURLEncoding

// payload is the wire form. Volume is an integer percentage.
type payload struct {
	Options []wheel.Option `json:"options"`
	Volume  int            `json:"volume"`
	Sound   bool           `json:"sound"`
}

// VolumePercent converts a volume fraction to the shared integer percentage.
func VolumePercent(v float64) int {
	p := int(math.Round(v * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Encode serializes options, volume and sound flag into an opaque token.
func Encode(s wheel.State) (string, error) {
	opts := s.Options
	if opts == nil {
		opts = []wheel.Option{}
	}
	b, err := json.Marshal(payload{Options: opts, Volume: VolumePercent(s.Volume), Sound: s.SoundEnabled})
	if err != nil {
		return "", fmt.Errorf("share: encode: %w", err)
	}
	return encoding.EncodeToString(b), nil
}

// Decode is the inverse of Encode. Any failure is a *DecodeError and no
// partial state is returned.
func Decode(token string) (wheel.State, error) {
	b, err := encoding.DecodeString(token)
	if err != nil {
		return wheel.State{}, decodeErr("transform: %w", err)
	}
	var p struct {
		Options *[]wheel.Option `json:"options"`
		Volume  *int            `json:"volume"`
		Sound   *bool           `json:"sound"`
	}
	if err := strictUnmarshal(b, &p); err != nil {
		return wheel.State{}, decodeErr("structure: %w", err)
	}
	if p.Options == nil || p.Volume == nil || p.Sound == nil {
		return wheel.State{}, decodeErr("structure: missing field")
	}
	if *p.Volume < 0 || *p.Volume > 100 {
		return wheel.State{}, decodeErr("volume %d out of range", *p.Volume)
	}
	s := wheel.State{
		Options:      append([]wheel.Option{}, (*p.Options)...),
		SoundEnabled: *p.Sound,
		Volume:       float64(*p.Volume) / 100,
	}
	if err := wheel.ValidateState(s); err != nil {
		return wheel.State{}, &DecodeError{Err: err}
	}
	return s, nil
}

// EncodeOptions encodes just the option list, for the URL courier.
func EncodeOptions(options []wheel.Option) (string, error) {
	if options == nil {
		options = []wheel.Option{}
	}
	b, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("share: encode options: %w", err)
	}
	return encoding.EncodeToString(b), nil
}

// DecodeOptions is the inverse of EncodeOptions.
func DecodeOptions(blob string) ([]wheel.Option, error) {
	b, err := encoding.DecodeString(blob)
	if err != nil {
		return nil, decodeErr("transform: %w", err)
	}
	var opts []wheel.Option
	if err := strictUnmarshal(b, &opts); err != nil {
		return nil, decodeErr("structure: %w", err)
	}
	if opts == nil {
		return nil, decodeErr("structure: options must be an array")
	}
	if err := wheel.ValidateOptions(opts); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return opts, nil
}

// strictUnmarshal rejects unknown fields and trailing data.
func strictUnmarshal(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data")
	}
	return nil
}
