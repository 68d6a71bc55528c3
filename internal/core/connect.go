package core

import (
	"context"
	"fmt"
	"net"

	"chanio/channels"
	"chanio/internal/capability"
	"chanio/internal/retry"
	"chanio/internal/session"
	"chanio/internal/transport"
	"chanio/util"
)

// ConnectMode dials a remote address and streams stdin to it through a
// pipe.
type ConnectMode struct {
	Dialer     transport.Dialer
	Backoff    *retry.Backoff // nil dials exactly once
	Address    string
	Provider   *channels.Provider
	Capability capability.Capability
	Logger     *util.Logger
	stdio
}

// Run dials the remote address, then relays stdin into the connection.
// The write half is shut down once stdin is exhausted so the peer sees
// EOF; the connection is closed when Run returns.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	conn, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", m.Address, err)
	}
	defer conn.Close()

	m.Logger.Verbose("connected to %s", conn.RemoteAddr())

	sess, err := session.New(m.Provider, m.stdin(), conn, m.Logger)
	if err != nil {
		return err
	}
	if err := m.Capability.Handle(ctx, sess); err != nil {
		return err
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		tc.CloseWrite() //nolint:errcheck
	}
	return nil
}

func (m *ConnectMode) dial(ctx context.Context) (net.Conn, error) {
	if m.Backoff == nil {
		m.Logger.Verbose("connecting to %s", m.Address)
		return m.Dialer.Dial(ctx, "tcp", m.Address)
	}

	var conn net.Conn
	err := m.Backoff.Do(ctx, func(attempt int) error {
		m.Logger.Verbose("connecting to %s (attempt %d)", m.Address, attempt)
		c, err := m.Dialer.Dial(ctx, "tcp", m.Address)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	return conn, err
}
