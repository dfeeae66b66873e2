package wheel_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/xtding233/spin-wheel/internal/wheel"
)

func newTestStore(t *testing.T, tiers []int) *wheel.Store {
	t.Helper()
	n := 0
	return wheel.NewStore(tiers, wheel.State{Volume: 0.5, SoundEnabled: true}, wheel.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("opt-%d", n)
	}))
}

func TestStoreAdd(t *testing.T) {
	s := newTestStore(t, []int{1, 2, 3})
	o, err := s.Add("  pizza  ")
	if err != nil {
		t.Fatal(err)
	}
	want := wheel.Option{ID: "opt-1", Text: "pizza", Weight: 1, Enabled: true}
	if o != want {
		t.Fatalf("added %+v want %+v", o, want)
	}
	if got := s.Snapshot().Options; len(got) != 1 || got[0] != want {
		t.Fatalf("snapshot %+v", got)
	}
}

func TestStoreAddNormalizesUnicode(t *testing.T) {
	s := newTestStore(t, nil)
	o, err := s.Add("cafe\u0301")
	if err != nil {
		t.Fatal(err)
	}
	if o.Text != "caf\u00e9" {
		t.Fatalf("text not NFC: %q", o.Text)
	}
}

func TestStoreRejectsInvalidMutations(t *testing.T) {
	s := newTestStore(t, []int{1, 2, 3})
	if _, err := s.Add("a"); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	checks := []struct {
		name string
		err  error
	}{
		{"empty text", func() error { _, err := s.Add("   "); return err }()},
		{"long text", func() error { _, err := s.Add(strings.Repeat("x", wheel.MaxTextLen+1)); return err }()},
		{"off-tier weight", func() error { _, err := s.SetWeight("opt-1", 4); return err }()},
		{"zero weight", func() error { _, err := s.SetWeight("opt-1", 0); return err }()},
		{"unknown weight id", func() error { _, err := s.SetWeight("nope", 2); return err }()},
		{"unknown toggle id", func() error { _, err := s.Toggle("nope"); return err }()},
		{"unknown remove id", s.Remove("nope")},
		{"volume high", s.SetVolume(1.5)},
		{"volume negative", s.SetVolume(-0.1)},
		{"replace duplicate ids", s.Replace(wheel.State{Options: []wheel.Option{
			{ID: "x", Text: "a", Weight: 1}, {ID: "x", Text: "b", Weight: 1},
		}})},
		{"replace oversized weight", s.Replace(wheel.State{Options: []wheel.Option{
			{ID: "x", Text: "a", Weight: 1_000_000_000_000}, {ID: "y", Text: "b", Weight: 1},
		}})},
	}
	for _, c := range checks {
		if !errors.Is(c.err, wheel.ErrValidation) {
			t.Fatalf("%s: want ErrValidation, got %v", c.name, c.err)
		}
	}
	if after := s.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("store changed by rejected mutations:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestStoreWeightBound(t *testing.T) {
	s := newTestStore(t, nil)
	a, _ := s.Add("a")
	b, _ := s.Add("b")
	if _, err := s.SetWeight(a.ID, wheel.MaxWeight+1); !errors.Is(err, wheel.ErrValidation) {
		t.Fatalf("weight above max: %v", err)
	}
	if _, err := s.SetWeight(a.ID, wheel.MaxWeight); err != nil {
		t.Fatal(err)
	}

	// the thinnest slice the bound allows still reads back under the pointer
	layout, err := s.Layout()
	if err != nil {
		t.Fatal(err)
	}
	target, err := wheel.TargetRotation(b, layout)
	if err != nil {
		t.Fatal(err)
	}
	got, err := wheel.SliceAtAngle(wheel.Normalize(target), layout)
	if err != nil || got.ID != b.ID {
		t.Fatalf("landed on %+v (%v), want %s", got, err, b.ID)
	}
}

func TestStoreVolumeWholePercent(t *testing.T) {
	s := newTestStore(t, nil)
	if err := s.SetVolume(0.123456); err != nil {
		t.Fatal(err)
	}
	if v := s.Snapshot().Volume; v != 0.12 {
		t.Fatalf("volume %v, want 0.12", v)
	}
	if err := s.Replace(wheel.State{Options: []wheel.Option{}, Volume: 0.876}); err != nil {
		t.Fatal(err)
	}
	if v := s.Snapshot().Volume; v != 0.88 {
		t.Fatalf("replaced volume %v, want 0.88", v)
	}
}

func TestStoreToggleWeightRemove(t *testing.T) {
	s := newTestStore(t, []int{1, 3, 5})
	for _, text := range []string{"a", "b", "c"} {
		if _, err := s.Add(text); err != nil {
			t.Fatal(err)
		}
	}
	if o, err := s.Toggle("opt-2"); err != nil || o.Enabled {
		t.Fatalf("toggle: %+v %v", o, err)
	}
	if o, err := s.SetWeight("opt-3", 5); err != nil || o.Weight != 5 {
		t.Fatalf("set weight: %+v %v", o, err)
	}
	layout, err := s.Layout()
	if err != nil {
		t.Fatal(err)
	}
	if len(layout) != 2 || layout[0].Option.ID != "opt-1" || layout[1].Option.ID != "opt-3" {
		t.Fatalf("layout ignores toggle: %+v", layout)
	}
	if layout[0].Sweep != 60 {
		t.Fatalf("weight 1 of 6 should sweep 60, got %v", layout[0].Sweep)
	}
	if err := s.Remove("opt-1"); err != nil {
		t.Fatal(err)
	}
	ids := []string{}
	for _, o := range s.Snapshot().Options {
		ids = append(ids, o.ID)
	}
	if !reflect.DeepEqual(ids, []string{"opt-2", "opt-3"}) {
		t.Fatalf("order after remove: %v", ids)
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := newTestStore(t, nil)
	if _, err := s.Add("a"); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	snap.Options[0].Text = "mutated"
	if s.Snapshot().Options[0].Text != "a" {
		t.Fatal("snapshot aliases store memory")
	}
}

func TestStoreLayoutNoEnabled(t *testing.T) {
	s := newTestStore(t, nil)
	if _, err := s.Layout(); !errors.Is(err, wheel.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}
