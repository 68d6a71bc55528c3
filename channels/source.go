package channels

import (
	"context"
	"io"

	cherr "chanio/internal/errors"
	"chanio/util"
)

// SourceChannel is the read end of a Pipe.  It is safe for concurrent
// use; concurrent reads are serialised.
type SourceChannel struct {
	endpoint
}

var (
	_ io.ReadCloser = (*SourceChannel)(nil)
	_ io.WriterTo   = (*SourceChannel)(nil)
)

// Read is ReadContext with a background context.
func (s *SourceChannel) Read(p []byte) (int, error) {
	return s.ReadContext(context.Background(), p)
}

// ReadContext reads up to len(p) buffered bytes.
//
// In blocking mode an empty pipe waits for data.  Once the sink is
// closed and the buffer drained, ReadContext returns 0, io.EOF.  In
// non-blocking mode an empty, still-open pipe returns ErrWouldBlock.
// Reading a closed source, including a read that was waiting when the
// close happened, fails with ErrClosedChannel.
func (s *SourceChannel) ReadContext(ctx context.Context, p []byte) (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	st := s.pipe.state
	m := s.pipe.provider.metrics

	for {
		st.mu.Lock()
		if st.sourceClosed {
			st.mu.Unlock()
			return 0, cherr.PipeOp("read", s.name, cherr.ErrClosedChannel)
		}
		if len(p) == 0 {
			st.mu.Unlock()
			return 0, nil
		}
		if st.ring.buffered() > 0 {
			n := st.ring.read(p)
			st.broadcastLocked()
			st.mu.Unlock()
			m.BytesRead(int64(n))
			return n, nil
		}
		if st.sinkClosed {
			st.mu.Unlock()
			return 0, io.EOF
		}
		if s.nonBlocking.Load() {
			st.mu.Unlock()
			m.WouldBlock()
			return 0, cherr.PipeOp("read", s.name, cherr.ErrWouldBlock)
		}
		changed := st.changed
		st.mu.Unlock()

		if err := s.wait(ctx, changed, "read"); err != nil {
			return 0, err
		}
	}
}

// Buffered returns the number of bytes that can be read without
// waiting.
func (s *SourceChannel) Buffered() int {
	st := s.pipe.state
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ring.buffered()
}

// WriteTo drains the pipe into w until the sink is closed.  It
// implements io.WriterTo so io.Copy from a source uses pooled buffers.
func (s *SourceChannel) WriteTo(w io.Writer) (int64, error) {
	bp := util.GetBuf()
	defer util.PutBuf(bp)
	buf := *bp

	var total int64
	for {
		nr, rerr := s.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			total += int64(nw)
			if werr != nil {
				return total, werr
			}
			if nw != nr {
				return total, io.ErrShortWrite
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

// Close closes the source and discards buffered bytes.  A read blocked
// on this source returns ErrClosedChannel and later writes to the sink
// fail with ErrBrokenPipe.  Close is idempotent and always returns nil.
func (s *SourceChannel) Close() error {
	return s.close()
}
