package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultBufferSize is the per-pipe ring size (64 KiB).
	DefaultBufferSize = 64 * 1024

	// DefaultConnTimeout is the TCP dial timeout.  Listen mode does not
	// use it; its idle timeout defaults to 0 (never).
	DefaultConnTimeout = 30 * time.Second

	// DefaultDialAttempts is how many times connect mode dials before
	// giving up.
	DefaultDialAttempts = 5

	// DefaultDialBackoff is the delay before the first redial.
	DefaultDialBackoff = 200 * time.Millisecond

	// DefaultMaxDialBackoff caps the delay between redials.
	DefaultMaxDialBackoff = 5 * time.Second

	// DefaultGracePeriod bounds the metrics server shutdown on exit.
	DefaultGracePeriod = 5 * time.Second
)
