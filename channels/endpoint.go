package channels

import (
	"context"
	"sync"
	"sync/atomic"

	cherr "chanio/internal/errors"
)

// endpoint holds what sinks and sources share: the blocking flag and the
// lock that serialises operations on one end.
//
// opMu is held for the whole of a Read or Write, including time spent
// waiting, so SetBlocking cannot flip the mode under an in-flight
// operation.  Close never takes opMu.
type endpoint struct {
	name        string
	pipe        *Pipe
	opMu        sync.Mutex
	nonBlocking atomic.Bool
}

// IsBlocking reports whether operations on this endpoint wait for
// progress.  Endpoints start in blocking mode.  IsBlocking never waits.
func (e *endpoint) IsBlocking() bool {
	return !e.nonBlocking.Load()
}

// SetBlocking switches the endpoint between blocking and non-blocking
// mode.  It waits for an in-flight operation on this endpoint to finish
// and fails with ErrClosedChannel once the endpoint is closed.
func (e *endpoint) SetBlocking(block bool) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if e.closed() {
		return cherr.PipeOp("configure", e.name, cherr.ErrClosedChannel)
	}
	if e.nonBlocking.Swap(!block) != !block {
		e.pipe.provider.logger.Debug("pipe %d %s: blocking=%v", e.pipe.id, e.name, block)
	}
	return nil
}

// IsOpen reports whether Close has not been called on this endpoint.
func (e *endpoint) IsOpen() bool {
	return !e.closed()
}

func (e *endpoint) closed() bool {
	st := e.pipe.state
	st.mu.Lock()
	defer st.mu.Unlock()
	if e.name == "sink" {
		return st.sinkClosed
	}
	return st.sourceClosed
}

// wait blocks until the state changes or ctx is done.  The caller must
// have captured changed while holding the state lock and released it.
func (e *endpoint) wait(ctx context.Context, changed <-chan struct{}, op string) error {
	select {
	case <-changed:
		return nil
	case <-ctx.Done():
		return cherr.PipeOp(op, e.name, ctx.Err())
	}
}

// close marks this endpoint closed and wakes every waiter on either
// side.  Repeated calls are no-ops.
func (e *endpoint) close() error {
	st := e.pipe.state
	st.mu.Lock()
	var both bool
	if e.name == "sink" {
		if st.sinkClosed {
			st.mu.Unlock()
			return nil
		}
		st.sinkClosed = true
		both = st.sourceClosed
	} else {
		if st.sourceClosed {
			st.mu.Unlock()
			return nil
		}
		st.sourceClosed = true
		// Nobody can read what is left.
		st.ring.reset()
		both = st.sinkClosed
	}
	st.broadcastLocked()
	st.mu.Unlock()

	e.pipe.provider.logger.Debug("pipe %d %s closed", e.pipe.id, e.name)
	e.pipe.endpointClosed(both)
	return nil
}
