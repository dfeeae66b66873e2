package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/xtding233/spin-wheel/internal/wheel"
)

// Repository maps a wheel's two persisted records onto a KV:
// the option list (JSON array) and the volume fraction (decimal text).
type Repository struct {
	kv KV
}

func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

func optionsKey(wheelID string) string { return "wheel/" + wheelID + "/options" }
func volumeKey(wheelID string) string  { return "wheel/" + wheelID + "/volume" }

// LoadOptions returns the stored options; ok is false when none were saved.
func (r *Repository) LoadOptions(ctx context.Context, wheelID string) (opts []wheel.Option, ok bool, err error) {
	b, err := r.kv.Get(ctx, optionsKey(wheelID))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(b, &opts); err != nil {
		return nil, false, fmt.Errorf("decode options of %q: %w", wheelID, err)
	}
	if err := wheel.ValidateOptions(opts); err != nil {
		return nil, false, fmt.Errorf("stored options of %q: %w", wheelID, err)
	}
	if opts == nil {
		opts = []wheel.Option{}
	}
	return opts, true, nil
}

func (r *Repository) SaveOptions(ctx context.Context, wheelID string, opts []wheel.Option) error {
	if opts == nil {
		opts = []wheel.Option{}
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("encode options of %q: %w", wheelID, err)
	}
	return r.kv.Put(ctx, optionsKey(wheelID), b)
}

// LoadVolume returns the stored volume fraction; ok is false when none was saved.
func (r *Repository) LoadVolume(ctx context.Context, wheelID string) (v float64, ok bool, err error) {
	b, err := r.kv.Get(ctx, volumeKey(wheelID))
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err = strconv.ParseFloat(string(b), 64)
	if err != nil || v < 0 || v > 1 {
		return 0, false, fmt.Errorf("stored volume of %q: %q is not in [0,1]", wheelID, b)
	}
	return wheel.RoundVolume(v), true, nil
}

func (r *Repository) SaveVolume(ctx context.Context, wheelID string, v float64) error {
	return r.kv.Put(ctx, volumeKey(wheelID), []byte(strconv.FormatFloat(v, 'f', -1, 64)))
}

// Save writes both records of a snapshot.
func (r *Repository) Save(ctx context.Context, wheelID string, s wheel.State) error {
	if err := r.SaveOptions(ctx, wheelID, s.Options); err != nil {
		return err
	}
	return r.SaveVolume(ctx, wheelID, s.Volume)
}
