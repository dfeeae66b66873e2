// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env            string        `env:"WHEEL_ENV" envDefault:"local"`
	HTTPAddr       string        `env:"WHEEL_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr       string        `env:"WHEEL_GRPC_ADDR" envDefault:":9090"`
	ProfileDir     string        `env:"WHEEL_PROFILE_DIR" envDefault:"config"`
	Profile        string        `env:"WHEEL_PROFILE" envDefault:"classic"`
	StoreDSN       string        `env:"WHEEL_STORE_DSN" envDefault:"memory:"`
	SessionTTL     time.Duration `env:"WHEEL_SESSION_TTL" envDefault:"30m"`
	ReloadInterval time.Duration `env:"WHEEL_RELOAD_INTERVAL" envDefault:"2s"`
	HTTPServer     HTTPServer
}

type HTTPServer struct {
	Timeout     time.Duration `env:"WHEEL_HTTP_TIMEOUT" envDefault:"10s"`
	IdleTimeout time.Duration `env:"WHEEL_HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the optional .env files, then the environment. Variables
// already set in the environment win over .env values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("WHEEL_SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}

// MustLoad is Load for main: it exits on error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
