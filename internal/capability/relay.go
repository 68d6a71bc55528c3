package capability

import (
	"context"
	"fmt"
	"hash"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"

	cherr "chanio/internal/errors"
	"chanio/internal/session"
	"chanio/util"
)

// Relay pumps the session's input into the sink on one goroutine and
// drains the source into the session's output on the caller's.
type Relay struct {
	RateLimit int       // drain cap in bytes/sec (0 = unlimited)
	Digest    bool      // report a BLAKE2b-256 digest of the drained bytes
	Report    io.Writer // digest destination, os.Stderr when nil
}

// Handle runs the relay to completion.  Cancelling ctx closes both
// endpoints, which wakes whichever side is blocked on the pipe.
func (r *Relay) Handle(ctx context.Context, sess *session.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := sess.CloseOnDone(ctx)
	defer stop()
	defer sess.Close()

	sink, source := sess.Pipe.Sink(), sess.Pipe.Source()

	var h hash.Hash
	var drain io.Reader = source
	if r.Digest {
		h, _ = blake2b.New256(nil) // only fails for keys over 64 bytes
		drain = io.TeeReader(source, h)
	}

	out := sess.Out
	if r.RateLimit > 0 {
		out = util.NewThrottledWriter(ctx, out, r.RateLimit)
	}

	pumped := make(chan error, 1)
	go func() {
		n, err := util.Copy(ctx, sink, sess.In)
		sess.Logger.Debug("pump finished after %d bytes", n)
		sink.Close() //nolint:errcheck
		pumped <- err
	}()

	n, err := util.Copy(ctx, out, drain)
	if err != nil {
		sess.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("drain: %w", err)
	}

	// End-of-stream on the source means the sink was closed, normally
	// by the pump; a concurrent cancel can also get here first.
	var perr error
	select {
	case perr = <-pumped:
	case <-ctx.Done():
		return ctx.Err()
	}

	sess.Logger.Verbose("relayed %d bytes", n)
	if h != nil {
		r.report(h.Sum(nil), n)
	}
	if perr != nil && !cherr.IsHarmless(perr) {
		return fmt.Errorf("pump: %w", perr)
	}
	return nil
}

func (r *Relay) report(sum []byte, n int64) {
	w := r.Report
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "blake2b-256 %x  %d bytes\n", sum, n)
}
