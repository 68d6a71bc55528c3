package channels

import "sync"

// Pipe is a unidirectional in-process byte channel: bytes written to
// the Sink are read, in order, from the Source.
//
// A pipe is never closed as a unit.  Each endpoint is closed on its own
// and the pipe's buffer is returned to its Provider once both are.
type Pipe struct {
	id       uint64
	provider *Provider
	state    *pipeState
	sink     *SinkChannel
	source   *SourceChannel
	release  sync.Once
}

func newPipe(pv *Provider, id uint64, capacity int) *Pipe {
	st := &pipeState{
		ring:    newRing(capacity),
		changed: make(chan struct{}),
	}
	p := &Pipe{id: id, provider: pv, state: st}
	p.sink = &SinkChannel{endpoint: endpoint{name: "sink", pipe: p}}
	p.source = &SourceChannel{endpoint: endpoint{name: "source", pipe: p}}
	return p
}

// Sink returns the write end of the pipe.
func (p *Pipe) Sink() *SinkChannel { return p.sink }

// Source returns the read end of the pipe.
func (p *Pipe) Source() *SourceChannel { return p.source }

// Capacity returns the size of the pipe's buffer in bytes.
func (p *Pipe) Capacity() int { return p.state.ring.capacity() }

// endpointClosed runs after an endpoint's first Close and hands the
// buffer back once both sides are done.
func (p *Pipe) endpointClosed(both bool) {
	if both {
		p.release.Do(func() { p.provider.release(p) })
	}
}

// pipeState is the buffer and close flags shared by both endpoints.
//
// Every change a waiter could care about (data added or removed, an
// endpoint closed) closes changed and installs a fresh channel, waking
// everyone who captured the old one.
type pipeState struct {
	mu           sync.Mutex
	ring         *ring
	sinkClosed   bool
	sourceClosed bool
	changed      chan struct{}
}

// broadcastLocked wakes all waiters.  Caller holds mu.
func (s *pipeState) broadcastLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}
