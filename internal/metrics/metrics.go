// Package metrics provides lock-free counters and gauges for pipe
// traffic.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.  The
// Collector also implements prometheus.Collector and can be registered
// on any registry.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chanio"

var (
	descPipesActive = prometheus.NewDesc(namespace+"_pipes_active",
		"Pipes with at least one open endpoint.", nil, nil)
	descPipesTotal = prometheus.NewDesc(namespace+"_pipes_opened_total",
		"Pipes opened since start.", nil, nil)
	descOpenFailures = prometheus.NewDesc(namespace+"_pipe_open_failures_total",
		"Pipe opens rejected for lack of buffer budget.", nil, nil)
	descBytes = prometheus.NewDesc(namespace+"_pipe_bytes_total",
		"Bytes moved through pipe endpoints.", []string{"endpoint"}, nil)
	descWouldBlock = prometheus.NewDesc(namespace+"_pipe_would_block_total",
		"Non-blocking operations that could not make full progress.", nil, nil)
	descErrors = prometheus.NewDesc(namespace+"_errors_total",
		"Errors recorded.", nil, nil)
	descUptime = prometheus.NewDesc(namespace+"_uptime_seconds",
		"Seconds since the collector was created.", nil, nil)
)

// Collector tracks runtime metrics for pipes and the modes driving them.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	pipesActive  atomic.Int64
	pipesTotal   atomic.Int64
	openFailures atomic.Int64
	bytesWritten atomic.Int64
	bytesRead    atomic.Int64
	wouldBlock   atomic.Int64
	errorsTotal  atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Pipe lifecycle ───────────────────────────────────────────────────

// PipeOpened increments both the active and total counters.
func (c *Collector) PipeOpened() {
	if c == nil {
		return
	}
	c.pipesActive.Add(1)
	c.pipesTotal.Add(1)
}

// PipeReleased decrements the active counter once both endpoints of a
// pipe are closed.
func (c *Collector) PipeReleased() {
	if c == nil {
		return
	}
	c.pipesActive.Add(-1)
}

// OpenRejected records a pipe open that failed for lack of budget.
func (c *Collector) OpenRejected() {
	if c == nil {
		return
	}
	c.openFailures.Add(1)
}

// ActivePipes returns the number of pipes with an open endpoint.
func (c *Collector) ActivePipes() int64 {
	if c == nil {
		return 0
	}
	return c.pipesActive.Load()
}

// TotalPipes returns the lifetime pipe count.
func (c *Collector) TotalPipes() int64 {
	if c == nil {
		return 0
	}
	return c.pipesTotal.Load()
}

// OpenFailures returns the number of rejected opens.
func (c *Collector) OpenFailures() int64 {
	if c == nil {
		return 0
	}
	return c.openFailures.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesWritten records n bytes accepted by a sink.
func (c *Collector) BytesWritten(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.bytesWritten.Add(n)
}

// BytesRead records n bytes delivered by a source.
func (c *Collector) BytesRead(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.bytesRead.Add(n)
}

// WouldBlock records a non-blocking operation that came up short.
func (c *Collector) WouldBlock() {
	if c == nil {
		return
	}
	c.wouldBlock.Add(1)
}

// TotalBytesWritten returns total bytes written into sinks.
func (c *Collector) TotalBytesWritten() int64 {
	if c == nil {
		return 0
	}
	return c.bytesWritten.Load()
}

// TotalBytesRead returns total bytes read from sources.
func (c *Collector) TotalBytesRead() int64 {
	if c == nil {
		return 0
	}
	return c.bytesRead.Load()
}

// WouldBlockCount returns the number of short non-blocking operations.
func (c *Collector) WouldBlockCount() int64 {
	if c == nil {
		return 0
	}
	return c.wouldBlock.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	PipesActive      int64  `json:"pipes_active"`
	PipesTotal       int64  `json:"pipes_total"`
	OpenFailures     int64  `json:"open_failures"`
	BytesWritten     int64  `json:"bytes_written"`
	BytesRead        int64  `json:"bytes_read"`
	WouldBlock       int64  `json:"would_block"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:       time.Since(c.startTime).Truncate(time.Second).String(),
		PipesActive:  c.pipesActive.Load(),
		PipesTotal:   c.pipesTotal.Load(),
		OpenFailures: c.openFailures.Load(),
		BytesWritten: c.bytesWritten.Load(),
		BytesRead:    c.bytesRead.Load(),
		WouldBlock:   c.wouldBlock.Load(),
		ErrorsTotal:  c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}

// ── prometheus.Collector ─────────────────────────────────────────────

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descPipesActive
	ch <- descPipesTotal
	ch <- descOpenFailures
	ch <- descBytes
	ch <- descWouldBlock
	ch <- descErrors
	ch <- descUptime
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(descPipesActive, prometheus.GaugeValue, float64(c.pipesActive.Load()))
	ch <- prometheus.MustNewConstMetric(descPipesTotal, prometheus.CounterValue, float64(c.pipesTotal.Load()))
	ch <- prometheus.MustNewConstMetric(descOpenFailures, prometheus.CounterValue, float64(c.openFailures.Load()))
	ch <- prometheus.MustNewConstMetric(descBytes, prometheus.CounterValue, float64(c.bytesWritten.Load()), "sink")
	ch <- prometheus.MustNewConstMetric(descBytes, prometheus.CounterValue, float64(c.bytesRead.Load()), "source")
	ch <- prometheus.MustNewConstMetric(descWouldBlock, prometheus.CounterValue, float64(c.wouldBlock.Load()))
	ch <- prometheus.MustNewConstMetric(descErrors, prometheus.CounterValue, float64(c.errorsTotal.Load()))
	ch <- prometheus.MustNewConstMetric(descUptime, prometheus.GaugeValue, time.Since(c.startTime).Seconds())
}
