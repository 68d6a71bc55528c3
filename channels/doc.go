// Package channels provides an in-process pipe with independently
// closable endpoints, and the MapMode tags that describe memory-mapped
// file regions.
//
// # Pipes
//
//	p, err := channels.Open()
//	if err != nil { ... }
//
//	go func() {
//		defer p.Sink().Close()
//		p.Sink().Write(data)
//	}()
//
//	io.Copy(dst, p.Source())
//
// Both endpoints start in blocking mode.  A read on an empty pipe waits
// for data, and a write to a full pipe waits for space.  Closing either
// endpoint wakes every goroutine waiting on the pipe: readers drain what
// is buffered and then see io.EOF after the sink closes, writers see
// ErrBrokenPipe after the source closes.  ReadContext and WriteContext
// additionally stop waiting when their context is done.
//
// Pipes come from a [Provider], which can cap the total buffer memory
// of open pipes.  [Open] uses an unlimited process-wide provider.
//
// # Errors
//
// Failures are *IOError values wrapping one of the sentinels below
// (ErrClosedChannel, ErrBrokenPipe, ErrWouldBlock, ErrResourceExhausted)
// or a context error.  End of stream is the bare io.EOF.
package channels

import cherr "chanio/internal/errors"

// Re-exported sentinels so callers outside this module can match pipe
// errors with errors.Is.
var (
	ErrClosedChannel     = cherr.ErrClosedChannel
	ErrBrokenPipe        = cherr.ErrBrokenPipe
	ErrWouldBlock        = cherr.ErrWouldBlock
	ErrResourceExhausted = cherr.ErrResourceExhausted
)

// IOError is the error type returned by pipe operations.
type IOError = cherr.IOError
