package channels

import (
	"context"
	"io"

	cherr "chanio/internal/errors"
	"chanio/util"
)

// SinkChannel is the write end of a Pipe.  It is safe for concurrent
// use; concurrent writes are serialised.
type SinkChannel struct {
	endpoint
}

var (
	_ io.WriteCloser = (*SinkChannel)(nil)
	_ io.ReaderFrom  = (*SinkChannel)(nil)
)

// Write is WriteContext with a background context.
func (s *SinkChannel) Write(p []byte) (int, error) {
	return s.WriteContext(context.Background(), p)
}

// WriteContext stores p in the pipe.
//
// In blocking mode it waits for buffer space until all of p is stored.
// In non-blocking mode it stores what fits and returns ErrWouldBlock if
// that is less than len(p).  A write fails with ErrBrokenPipe once the
// source is closed and with ErrClosedChannel once this sink is closed;
// in both cases n counts the bytes stored before the failure.
func (s *SinkChannel) WriteContext(ctx context.Context, p []byte) (n int, err error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	st := s.pipe.state
	m := s.pipe.provider.metrics
	defer func() { m.BytesWritten(int64(n)) }()

	for {
		st.mu.Lock()
		if st.sinkClosed {
			st.mu.Unlock()
			return n, cherr.PipeOp("write", s.name, cherr.ErrClosedChannel)
		}
		if st.sourceClosed {
			st.mu.Unlock()
			return n, cherr.PipeOp("write", s.name, cherr.ErrBrokenPipe)
		}
		if stored := st.ring.write(p[n:]); stored > 0 {
			n += stored
			st.broadcastLocked()
		}
		if n == len(p) {
			st.mu.Unlock()
			return n, nil
		}
		if s.nonBlocking.Load() {
			st.mu.Unlock()
			m.WouldBlock()
			return n, cherr.PipeOp("write", s.name, cherr.ErrWouldBlock)
		}
		changed := st.changed
		st.mu.Unlock()

		if err := s.wait(ctx, changed, "write"); err != nil {
			return n, err
		}
	}
}

// ReadFrom copies r into the pipe until r reports EOF.  It implements
// io.ReaderFrom so io.Copy into a sink uses pooled buffers.
func (s *SinkChannel) ReadFrom(r io.Reader) (int64, error) {
	bp := util.GetBuf()
	defer util.PutBuf(bp)
	buf := *bp

	var total int64
	for {
		nr, rerr := r.Read(buf)
		if nr > 0 {
			nw, werr := s.Write(buf[:nr])
			total += int64(nw)
			if werr != nil {
				return total, werr
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}

// Close closes the sink.  Buffered bytes stay readable; once they are
// drained the source reports io.EOF.  A write blocked on this sink
// returns ErrClosedChannel.  Close is idempotent and always returns nil.
func (s *SinkChannel) Close() error {
	return s.close()
}
