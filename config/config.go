// Package config defines the runtime configuration for chanio and
// validates it before any pipe is opened.
package config

import (
	"fmt"
	"strconv"
	"time"

	"chanio/channels"
	cherr "chanio/internal/errors"
)

// Config holds every tuneable for a single chanio run.
type Config struct {
	// ── Mode ─────────────────────────────────────────────────────────
	Listen    bool   // -l: accept TCP connections and drain them to stdout
	KeepOpen  bool   // -k: keep accepting after the first connection
	Host      string // connect target, or bind host with -l
	Port      int    // connect target port
	LocalPort int    // -p: listen port, or source port when connecting
	ListModes bool   // --list-map-modes

	// ── Pipe ─────────────────────────────────────────────────────────
	BufferSize  int   // per-pipe ring size in bytes (0 = default)
	MaxBuffered int64 // buffer budget across pipes (0 = unlimited)
	RateLimit   int   // drain throughput cap in bytes/sec (0 = unlimited)

	// ── Network ──────────────────────────────────────────────────────
	Timeout      time.Duration // dial timeout
	IdleTimeout  time.Duration // listen: drop a connection idle this long (0 = never)
	DialAttempts int           // connect attempts before giving up

	// ── Output ───────────────────────────────────────────────────────
	Digest      bool   // print a BLAKE2b-256 digest of transferred bytes
	Stats       bool   // print the metrics snapshot on exit
	MetricsAddr string // serve Prometheus metrics on this address
	Verbose     int
	DryRun      bool
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		BufferSize:   DefaultBufferSize,
		Timeout:      DefaultConnTimeout,
		DialAttempts: DefaultDialAttempts,
	}
}

// ── Port helpers ─────────────────────────────────────────────────────

// ParsePort parses a decimal TCP port in 1-65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// IsConnect reports whether the configuration selects connect mode.
func (c *Config) IsConnect() bool {
	return !c.Listen && !c.ListModes && c.Host != ""
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// Failures are *errors.ConfigError values naming the offending flag.
func (c *Config) Validate() error {
	if c.BufferSize < 0 {
		return &cherr.ConfigError{
			Field:   "buffer-size",
			Value:   c.BufferSize,
			Message: "must not be negative",
			Hint:    "omit the flag to use the 64 KiB default",
		}
	}
	if c.MaxBuffered < 0 {
		return &cherr.ConfigError{Field: "max-buffered", Value: c.MaxBuffered, Message: "must not be negative"}
	}
	if ring := channels.BufferCapacity(c.BufferSize); c.MaxBuffered > 0 && c.MaxBuffered < int64(ring) {
		return &cherr.ConfigError{
			Field:   "max-buffered",
			Value:   c.MaxBuffered,
			Message: fmt.Sprintf("smaller than one pipe buffer (%d bytes)", ring),
			Hint:    "raise --max-buffered or lower --buffer-size",
		}
	}
	if c.RateLimit < 0 {
		return &cherr.ConfigError{Field: "rate", Value: c.RateLimit, Message: "must not be negative"}
	}
	if c.Timeout < 0 {
		return &cherr.ConfigError{Field: "timeout", Value: c.Timeout, Message: "must not be negative"}
	}
	if c.IdleTimeout < 0 {
		return &cherr.ConfigError{Field: "idle-timeout", Value: c.IdleTimeout, Message: "must not be negative"}
	}

	if c.ListModes {
		return nil
	}

	if c.Listen {
		if c.LocalPort == 0 {
			return &cherr.ConfigError{
				Field:   "port",
				Message: "required with -l",
				Hint:    "chanio -l -p 9000",
			}
		}
		if c.LocalPort < 1 || c.LocalPort > 65535 {
			return &cherr.ConfigError{Field: "port", Value: c.LocalPort, Message: "out of range 1-65535"}
		}
		return nil
	}

	if c.KeepOpen {
		return fmt.Errorf("-k is only valid with -l")
	}

	if c.Host == "" {
		if c.LocalPort != 0 {
			return fmt.Errorf("-p needs -l or a destination to bind from")
		}
		return nil
	}
	if c.Port == 0 {
		return fmt.Errorf("destination port is required")
	}
	if c.LocalPort < 0 || c.LocalPort > 65535 {
		return &cherr.ConfigError{Field: "port", Value: c.LocalPort, Message: "source port out of range 1-65535"}
	}
	if c.DialAttempts < 1 {
		return &cherr.ConfigError{Field: "dial-attempts", Value: c.DialAttempts, Message: "must be at least 1"}
	}
	return nil
}
