// Package errors provides domain-specific error types for chanio.
//
// Pipe endpoints report failures as sentinels wrapped in an [IOError]
// so callers can match with [Is] while still seeing which endpoint and
// operation failed.  Network and configuration failures carry their own
// structured types.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrClosedChannel is returned by an operation on an endpoint that
	// has already been closed, including operations that were blocked
	// when the close happened.
	ErrClosedChannel = errors.New("channel is closed")

	// ErrBrokenPipe is returned by a write once the read side is gone.
	ErrBrokenPipe = errors.New("broken pipe")

	// ErrWouldBlock is returned by a non-blocking endpoint that could
	// not make (full) progress.
	ErrWouldBlock = errors.New("operation would block")

	// ErrResourceExhausted is returned when a pipe buffer cannot be
	// allocated within the configured budget.
	ErrResourceExhausted = errors.New("pipe resources exhausted")

	ErrNotConnected = errors.New("not connected")
	ErrTimeout      = errors.New("operation timed out")
)

// ── Structured error types ───────────────────────────────────────────

// IOError describes a failed pipe operation.
type IOError struct {
	Op       string // "open", "read", "write", "configure"
	Endpoint string // "sink", "source" or "" for pipe-level failures
	Err      error
}

func (e *IOError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("pipe %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pipe %s %s: %v", e.Endpoint, e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // operation: "dial", "listen", "accept", "write", "read"
	Addr      string // network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// PipeOp wraps err as an IOError for the given endpoint and operation.
// A nil err stays nil.
func PipeOp(op, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Endpoint: endpoint, Err: err}
}

// Wrap creates a NetworkError, detecting retryability from the
// underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// IsHarmless reports whether err is an expected end-of-transfer
// condition: EOF, a closed endpoint or connection, or a broken pipe.
func IsHarmless(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, ErrClosedChannel),
		errors.Is(err, ErrBrokenPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, io.ErrClosedPipe):
		return true
	}
	return false
}

func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrWouldBlock) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return true
		}
		return opErr.Timeout()
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
