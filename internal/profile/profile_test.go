package profile_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xtding233/spin-wheel/internal/profile"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadBuiltinWhenNoFiles(t *testing.T) {
	p, err := profile.NewLoader(t.TempDir()).Load("classic")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p, profile.Builtin()) {
		t.Fatalf("got %+v want builtin", p)
	}
}

func TestLoadMergesDefaultAndProfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "profiles", "default.yaml"), `
version: "1"
weights: [1, 2, 3]
spin:
  duration_ms: 4000
  min_turns: 7
  max_turns: 10
audio:
  volume: 0.4
  sound: true
`)
	writeFile(t, filepath.Join(dir, "profiles", "boost.yaml"), `
version: "2"
weights: [1, 3, 5]
spin:
  duration_ms: 6000
audio:
  sound: false
`)
	p, err := profile.NewLoader(dir).Load("boost")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "boost" || p.Version != "2" {
		t.Fatalf("identity: %+v", p)
	}
	if !reflect.DeepEqual(p.Weights, []int{1, 3, 5}) {
		t.Fatalf("weights: %v", p.Weights)
	}
	if p.Duration != 6*time.Second || p.MinTurns != 7 || p.MaxTurns != 10 {
		t.Fatalf("spin: %+v", p)
	}
	if p.Volume != 0.4 || p.Sound {
		t.Fatalf("audio: volume=%v sound=%v", p.Volume, p.Sound)
	}
	cfg := p.SpinConfig()
	if cfg.Duration != p.Duration || cfg.TickInterval != 100*time.Millisecond {
		t.Fatalf("spin config: %+v", cfg)
	}
}

func TestValidateRawCollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "profiles", "bad.yaml"), `
weights: [0, 2, 2, 101]
spin:
  duration_ms: -1
  min_turns: 9
  max_turns: 3
audio:
  volume: 2
defaults: ["  "]
`)
	_, err := profile.NewLoader(dir).Load("bad")
	if err == nil {
		t.Fatal("invalid profile accepted")
	}
	for _, want := range []string{"weights[0]", "weights[2] duplicates", "weights[3] must be <= 100", "duration_ms", "max_turns", "audio.volume", "defaults[0]"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoaderCacheAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles", "classic.yaml")
	writeFile(t, path, "spin:\n  duration_ms: 1000\n")
	l := profile.NewLoader(dir)
	p, err := l.Load("classic")
	if err != nil || p.Duration != time.Second {
		t.Fatalf("first load: %+v %v", p, err)
	}
	writeFile(t, path, "spin:\n  duration_ms: 2000\n")
	if p, _ = l.Load("classic"); p.Duration != time.Second {
		t.Fatalf("cache bypassed: %v", p.Duration)
	}
	l.Invalidate()
	if p, _ = l.Load("classic"); p.Duration != 2*time.Second {
		t.Fatalf("reload after invalidate: %v", p.Duration)
	}
}

func TestShippedProfiles(t *testing.T) {
	l := profile.NewLoader(filepath.Join("..", "..", "config"))
	classic, err := l.Load("classic")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(classic.Weights, []int{1, 2, 3}) || classic.Duration != 4*time.Second {
		t.Fatalf("classic: %+v", classic)
	}
	boost, err := l.Load("boost")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(boost.Weights, []int{1, 3, 5}) {
		t.Fatalf("boost: %+v", boost)
	}
}

func TestFileWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.yaml")
	writeFile(t, path, "a")

	var hits atomic.Int32
	w := profile.NewFileWatcher([]string{path}, 10*time.Millisecond, func(string) { hits.Add(1) })
	w.Start()
	defer w.Stop()

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hits.Load() == 0 {
		t.Fatal("change not reported")
	}
}
