// Package core is the orchestration layer.  It splices pipes between
// local I/O and network connections and provides a builder that
// selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	channels  →  session  →  capability  →  core  →  cmd (CLI)
//
// Build is the single dispatch point; cmd never constructs a mode
// directly.
package core

import (
	"context"
	"io"
	"os"
)

// Mode represents a complete operational mode of chanio (relay,
// listen, connect, or the map-mode listing).  Each mode owns its full
// lifecycle from opening pipes to teardown.
type Mode interface {
	Run(ctx context.Context) error
}

// stdio resolves the overridable stdin/stdout pair shared by the modes.
type stdio struct {
	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (s stdio) stdin() io.Reader {
	if s.Stdin != nil {
		return s.Stdin
	}
	return os.Stdin
}

func (s stdio) stdout() io.Writer {
	if s.Stdout != nil {
		return s.Stdout
	}
	return os.Stdout
}
