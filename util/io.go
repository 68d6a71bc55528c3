package util

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// DefaultBufSize is the copy buffer size for pumping data (32 KiB).
const DefaultBufSize = 32 * 1024

// Copy moves data from src to dst through a pooled buffer until src
// reports EOF, a write fails, or ctx is done.  Context cancellation is
// only observed between chunks; callers that need to interrupt a
// blocked Read must close src.
//
// A clean EOF from src yields a nil error.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	bp := GetBuf()
	defer PutBuf(bp)
	buf := *bp

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// ThrottledWriter caps the throughput of an underlying writer with a
// token bucket.  Writes larger than the burst are split into burst-sized
// chunks.
type ThrottledWriter struct {
	ctx     context.Context
	w       io.Writer
	limiter *rate.Limiter
}

// NewThrottledWriter limits w to bytesPerSec.  The burst equals one
// second of traffic, capped at DefaultBufSize so small limits still
// make steady progress.
func NewThrottledWriter(ctx context.Context, w io.Writer, bytesPerSec int) *ThrottledWriter {
	burst := bytesPerSec
	if burst > DefaultBufSize {
		burst = DefaultBufSize
	}
	if burst < 1 {
		burst = 1
	}
	return &ThrottledWriter{
		ctx:     ctx,
		w:       w,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
	}
}

// Write waits for tokens before each chunk.  A cancelled context stops
// the write and is returned as the error.
func (t *ThrottledWriter) Write(p []byte) (int, error) {
	var written int
	burst := t.limiter.Burst()
	for len(p) > 0 {
		chunk := len(p)
		if chunk > burst {
			chunk = burst
		}
		if err := t.limiter.WaitN(t.ctx, chunk); err != nil {
			return written, err
		}
		n, err := t.w.Write(p[:chunk])
		written += n
		if err != nil {
			return written, err
		}
		p = p[chunk:]
	}
	return written, nil
}
