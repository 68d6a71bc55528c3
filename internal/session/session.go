// Package session binds one pipe to the local reader and writer it is
// spliced between.  Capabilities operate on sessions rather than on raw
// pipes, which keeps them testable with in-memory buffers.
package session

import (
	"context"
	"io"
	"sync"

	"chanio/channels"
	"chanio/util"
)

// Session is the runtime context for a single trip through a pipe: In
// feeds the sink, the source drains into Out.
type Session struct {
	Pipe   *channels.Pipe
	In     io.Reader
	Out    io.Writer
	Logger *util.Logger

	closeOnce sync.Once
}

// New opens a pipe from provider and binds it to in and out.  The
// provider's errors (resource exhaustion) are returned unchanged.
func New(provider *channels.Provider, in io.Reader, out io.Writer, logger *util.Logger) (*Session, error) {
	if provider == nil {
		provider = channels.DefaultProvider()
	}
	p, err := provider.OpenPipe()
	if err != nil {
		return nil, err
	}
	return &Session{
		Pipe:   p,
		In:     in,
		Out:    out,
		Logger: logger,
	}, nil
}

// Close closes both endpoints, waking anything blocked on the pipe and
// returning its buffer to the provider.  Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Pipe.Sink().Close()   //nolint:errcheck
		s.Pipe.Source().Close() //nolint:errcheck
	})
}

// CloseOnDone closes the session once ctx is done.  The returned stop
// function detaches the watcher; it does not close the session.  Once
// stop has returned, a later cancellation no longer closes the session.
func (s *Session) CloseOnDone(ctx context.Context) (stop func()) {
	detach := context.AfterFunc(ctx, s.Close)
	return func() { detach() }
}
