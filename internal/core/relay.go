package core

import (
	"context"

	"chanio/channels"
	"chanio/internal/capability"
	"chanio/internal/session"
	"chanio/util"
)

// RelayMode splices stdin into a pipe and drains the pipe to stdout.
// It is the default when no address is given.
type RelayMode struct {
	Provider   *channels.Provider
	Capability capability.Capability
	Logger     *util.Logger
	stdio
}

// Run opens one pipe and relays until stdin reaches EOF or ctx is
// cancelled.
func (m *RelayMode) Run(ctx context.Context) error {
	sess, err := session.New(m.Provider, m.stdin(), m.stdout(), m.Logger)
	if err != nil {
		return err
	}
	m.Logger.Verbose("relaying stdin to stdout (%d byte pipe)", sess.Pipe.Capacity())
	return m.Capability.Handle(ctx, sess)
}
