// Package config reads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	TCPAddr  string `env:"ARENA_TCP_ADDR"  envDefault:"127.0.0.1:50007"`
	HTTPAddr string `env:"ARENA_HTTP_ADDR" envDefault:":8080"`

	// Zero disables the deadline.
	TurnTimeout   time.Duration `env:"ARENA_TURN_TIMEOUT"   envDefault:"0s"`
	DraftTimeout  time.Duration `env:"ARENA_DRAFT_TIMEOUT"  envDefault:"0s"`
	TeardownDelay time.Duration `env:"ARENA_TEARDOWN_DELAY" envDefault:"1s"`

	MaxMatches int `env:"ARENA_MAX_MATCHES" envDefault:"1"`

	LogLevel string `env:"ARENA_LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"ARENA_LOG_DEV"`

	// Empty disables tracing.
	OTelEndpoint string `env:"ARENA_OTEL_ENDPOINT"`
}

// Load reads the given dotenv files (".env" when none are named) without
// overriding variables already set, then parses and validates the
// environment. Missing dotenv files are ignored.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.TCPAddr == "" && c.HTTPAddr == "" {
		errs = append(errs, fmt.Errorf("%w: no listen address", ErrInvalid))
	}
	for name, d := range map[string]time.Duration{
		"ARENA_TURN_TIMEOUT":   c.TurnTimeout,
		"ARENA_DRAFT_TIMEOUT":  c.DraftTimeout,
		"ARENA_TEARDOWN_DELAY": c.TeardownDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%w: %s is negative", ErrInvalid, name))
		}
	}
	if c.MaxMatches < 1 {
		errs = append(errs, fmt.Errorf("%w: ARENA_MAX_MATCHES must be at least 1", ErrInvalid))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: ARENA_LOG_LEVEL: %v", ErrInvalid, err))
	}
	return errors.Join(errs...)
}
