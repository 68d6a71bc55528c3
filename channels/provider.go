package channels

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	cherr "chanio/internal/errors"
	"chanio/internal/metrics"
	"chanio/util"
)

const (
	// DefaultBufferSize is the ring capacity of a pipe opened without an
	// explicit size (64 KiB, the Linux pipe default).
	DefaultBufferSize = 64 * 1024

	// MinBufferSize is the smallest ring a pipe will allocate.
	MinBufferSize = 512
)

// ProviderConfig bounds the pipes a Provider hands out.
type ProviderConfig struct {
	// BufferSize is the per-pipe ring capacity in bytes.  0 selects
	// DefaultBufferSize; other values are rounded up to a power of two
	// no smaller than MinBufferSize.
	BufferSize int

	// MaxBufferedBytes caps the ring memory of all pipes that still
	// have an open endpoint.  0 means unlimited.
	MaxBufferedBytes int64
}

// ProviderOption customises a Provider.
type ProviderOption func(*Provider)

// WithMetrics attaches a collector that every pipe from the provider
// reports to.
func WithMetrics(c *metrics.Collector) ProviderOption {
	return func(p *Provider) { p.metrics = c }
}

// WithLogger attaches a logger for pipe lifecycle events.
func WithLogger(l *util.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l.Named("pipe") }
}

// Provider opens pipes against a shared buffer budget.  Opening never
// waits: when the budget is spent OpenPipe fails immediately, and the
// budget of a pipe is returned once both of its endpoints are closed.
type Provider struct {
	bufSize  int
	limit    int64
	budget   *semaphore.Weighted // nil when unlimited
	reserved atomic.Int64
	nextID   atomic.Uint64

	metrics *metrics.Collector
	logger  *util.Logger
}

// NewProvider creates a provider for the given limits.
func NewProvider(cfg ProviderConfig, opts ...ProviderOption) *Provider {
	p := &Provider{
		bufSize: BufferCapacity(cfg.BufferSize),
		limit:   cfg.MaxBufferedBytes,
	}
	if cfg.MaxBufferedBytes > 0 {
		p.budget = semaphore.NewWeighted(cfg.MaxBufferedBytes)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultProvider = NewProvider(ProviderConfig{})

// DefaultProvider returns the process-wide provider used by [Open].
// It has no budget limit.
func DefaultProvider() *Provider { return defaultProvider }

// Open opens a pipe from the default provider.
func Open() (*Pipe, error) {
	return defaultProvider.OpenPipe()
}

// OpenPipe allocates a connected sink/source pair.  It fails with an
// *errors.IOError wrapping ErrResourceExhausted when the pipe's buffer
// does not fit in the remaining budget.
func (p *Provider) OpenPipe() (*Pipe, error) {
	size := int64(p.bufSize)
	if p.budget != nil && !p.budget.TryAcquire(size) {
		p.metrics.OpenRejected()
		p.logger.Warn("open rejected: %d of %d buffer bytes reserved", p.reserved.Load(), p.limit)
		return nil, cherr.PipeOp("open", "", cherr.ErrResourceExhausted)
	}
	p.reserved.Add(size)

	pipe := newPipe(p, p.nextID.Add(1), p.bufSize)
	p.metrics.PipeOpened()
	p.logger.Debug("pipe %d opened (%d byte buffer)", pipe.id, p.bufSize)
	return pipe, nil
}

// BufferSize returns the ring capacity of pipes from this provider.
func (p *Provider) BufferSize() int { return p.bufSize }

// Reserved returns the buffer bytes held by pipes that still have an
// open endpoint.
func (p *Provider) Reserved() int64 { return p.reserved.Load() }

// Metrics returns the attached collector, or nil.
func (p *Provider) Metrics() *metrics.Collector { return p.metrics }

func (p *Provider) release(pipe *Pipe) {
	size := int64(pipe.state.ring.capacity())
	p.reserved.Add(-size)
	if p.budget != nil {
		p.budget.Release(size)
	}
	p.metrics.PipeReleased()
	p.logger.Debug("pipe %d released", pipe.id)
}
