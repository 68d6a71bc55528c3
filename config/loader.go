package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. CHANIO_BUFFER_SIZE.
const EnvPrefix = "CHANIO"

// env mirrors the subset of Config that may come from the environment.
type env struct {
	Host         string        `envconfig:"HOST"`
	Port         int           `envconfig:"PORT"`
	Listen       bool          `envconfig:"LISTEN"`
	KeepOpen     bool          `envconfig:"KEEP_OPEN"`
	BufferSize   int           `envconfig:"BUFFER_SIZE"`
	MaxBuffered  int64         `envconfig:"MAX_BUFFERED"`
	RateLimit    int           `envconfig:"RATE"`
	Timeout      time.Duration `envconfig:"TIMEOUT"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT"`
	DialAttempts int           `envconfig:"DIAL_ATTEMPTS"`
	Digest       bool          `envconfig:"DIGEST"`
	Stats        bool          `envconfig:"STATS"`
	MetricsAddr  string        `envconfig:"METRICS_ADDR"`
	Verbose      int           `envconfig:"VERBOSE"`
}

// LoadFromEnv overlays CHANIO_* environment variables onto cfg.  Only
// variables that are set and non-zero override the existing value.
// Call it BEFORE CLI flag parsing so that flags take precedence.
//
// CHANIO_PORT sets the listen port when CHANIO_LISTEN is true and the
// connect port otherwise.
func LoadFromEnv(cfg *Config) error {
	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	if e.Host != "" {
		cfg.Host = e.Host
	}
	if e.Listen {
		cfg.Listen = true
	}
	if e.KeepOpen {
		cfg.KeepOpen = true
	}
	if e.Port > 0 {
		if cfg.Listen {
			cfg.LocalPort = e.Port
		} else {
			cfg.Port = e.Port
		}
	}
	if e.BufferSize > 0 {
		cfg.BufferSize = e.BufferSize
	}
	if e.MaxBuffered > 0 {
		cfg.MaxBuffered = e.MaxBuffered
	}
	if e.RateLimit > 0 {
		cfg.RateLimit = e.RateLimit
	}
	if e.Timeout > 0 {
		cfg.Timeout = e.Timeout
	}
	if e.IdleTimeout > 0 {
		cfg.IdleTimeout = e.IdleTimeout
	}
	if e.DialAttempts > 0 {
		cfg.DialAttempts = e.DialAttempts
	}
	if e.Digest {
		cfg.Digest = true
	}
	if e.Stats {
		cfg.Stats = true
	}
	if e.MetricsAddr != "" {
		cfg.MetricsAddr = e.MetricsAddr
	}
	if e.Verbose > 0 {
		cfg.Verbose = e.Verbose
	}
	return nil
}
