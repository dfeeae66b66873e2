package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xtding233/spin-wheel/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.GRPCAddr != ":9090" || cfg.Profile != "classic" || cfg.StoreDSN != "memory:" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.HTTPServer.Timeout != 10*time.Second {
		t.Fatalf("durations: %+v", cfg)
	}
}

func TestLoadDotEnvAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	body := "WHEEL_PROFILE=boost\nWHEEL_STORE_DSN=sqlite:wheel.db\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WHEEL_STORE_DSN", "memory:")
	// godotenv sets variables with os.Setenv; restore them after the test
	t.Setenv("WHEEL_PROFILE", "")
	os.Unsetenv("WHEEL_PROFILE")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Profile != "boost" {
		t.Fatalf("profile from .env: %q", cfg.Profile)
	}
	if cfg.StoreDSN != "memory:" {
		t.Fatalf("environment should win over .env: %q", cfg.StoreDSN)
	}
}

func TestLoadErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("WHEEL_SESSION_TTL", "soon")
	_, err := config.Load(missing)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("want parse env error, got %v", err)
	}

	t.Setenv("WHEEL_SESSION_TTL", "0s")
	if _, err := config.Load(missing); err == nil {
		t.Fatal("zero ttl accepted")
	}
}
