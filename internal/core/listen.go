package core

import (
	"context"
	"fmt"
	"net"
	"time"

	"chanio/channels"
	"chanio/internal/capability"
	cherr "chanio/internal/errors"
	"chanio/internal/metrics"
	"chanio/internal/session"
	"chanio/util"
)

// ListenMode accepts inbound TCP connections and drains each one to
// stdout through its own pipe.  With KeepOpen=true it keeps accepting
// after the first connection; connections are served one at a time so
// their output never interleaves.
type ListenMode struct {
	Address    string        // "host:port" or ":port"
	KeepOpen   bool          // -k
	Timeout    time.Duration // idle read deadline per connection (0 = none)
	Provider   *channels.Provider
	Capability capability.Capability
	Metrics    *metrics.Collector
	Logger     *util.Logger
	stdio

	// ready, when set, receives the bound address once listening.
	ready chan<- net.Addr
}

// Run starts listening and serves connections until the first one is
// done (or, with KeepOpen, until ctx is cancelled).
func (m *ListenMode) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", m.Address, err)
	}
	defer ln.Close()

	m.Logger.Verbose("listening on %s", ln.Addr())
	if m.ready != nil {
		m.ready <- ln.Addr()
	}

	// Shut the listener down when the context expires.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		m.Logger.Verbose("connection from %s", conn.RemoteAddr())

		err = m.serveConn(ctx, conn)
		if !m.KeepOpen {
			return err
		}
		if err != nil && ctx.Err() == nil {
			m.Metrics.RecordError(err.Error())
			m.Logger.Warn("connection failed: %v", err)
		}
	}
}

func (m *ListenMode) serveConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	var in = conn
	if m.Timeout > 0 {
		in = &idleConn{Conn: conn, timeout: m.Timeout}
	}

	sess, err := session.New(m.Provider, in, m.stdout(), m.Logger)
	if err != nil {
		return err
	}

	// A pump blocked in conn.Read is only released by closing conn.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	err = m.Capability.Handle(ctx, sess)
	if cherr.IsHarmless(err) {
		return nil
	}
	return err
}

// idleConn pushes the read deadline forward before every Read, turning
// an absolute deadline into an idle timeout.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func (c *idleConn) Read(p []byte) (int, error) {
	c.Conn.SetReadDeadline(time.Now().Add(c.timeout)) //nolint:errcheck
	return c.Conn.Read(p)
}
