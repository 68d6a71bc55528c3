// Package capability defines what happens to the bytes of a session.
// Each Capability encapsulates a single behaviour and operates on a
// Session rather than on a raw pipe, which keeps capabilities testable
// and decoupled from where the bytes come from.
package capability

import (
	"context"

	"chanio/internal/session"
)

// Capability moves a session's bytes through its pipe.
type Capability interface {
	// Handle blocks until the session's input is exhausted, its output
	// fails, or ctx is cancelled.  The session is closed on return.
	Handle(ctx context.Context, sess *session.Session) error
}
