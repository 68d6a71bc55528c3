package core

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"chanio/channels"
	"chanio/internal/capability"
	"chanio/internal/metrics"
	"chanio/util"
)

// lockedBuffer lets the test read output while the mode writes it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startListen(t *testing.T, ctx context.Context, mode *ListenMode) (net.Addr, <-chan error) {
	t.Helper()
	ready := make(chan net.Addr, 1)
	mode.ready = ready
	errc := make(chan error, 1)
	go func() { errc <- mode.Run(ctx) }()

	select {
	case addr := <-ready:
		return addr, errc
	case err := <-errc:
		t.Fatalf("listen: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener never became ready")
	}
	return nil, nil
}

func send(t *testing.T, addr net.Addr, msg string) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Write([]byte(msg)) //nolint:errcheck
	conn.Close()
}

// TestListenMode_Single verifies that ListenMode drains one connection
// to stdout and returns.
func TestListenMode_Single(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	out := &lockedBuffer{}
	mode := &ListenMode{
		Address:    "127.0.0.1:0",
		Timeout:    2 * time.Second,
		Capability: &capability.Relay{},
		Logger:     util.NewLogger(0),
		stdio:      stdio{Stdout: out},
	}
	addr, errc := startListen(t, ctx, mode)

	send(t, addr, "test message")

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("listen mode did not return after the connection closed")
	}
	if got := out.String(); got != "test message" {
		t.Errorf("stdout = %q, want %q", got, "test message")
	}
}

// TestListenMode_KeepOpen verifies -k accepts multiple connections and
// releases each pipe.
func TestListenMode_KeepOpen(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	m := metrics.New()
	out := &lockedBuffer{}
	mode := &ListenMode{
		Address:    "127.0.0.1:0",
		KeepOpen:   true,
		Provider:   channels.NewProvider(channels.ProviderConfig{MaxBufferedBytes: channels.DefaultBufferSize}, channels.WithMetrics(m)),
		Capability: &capability.Relay{},
		Metrics:    m,
		stdio:      stdio{Stdout: out},
	}
	addr, errc := startListen(t, ctx, mode)

	want := ""
	for _, msg := range []string{"one ", "two ", "three"} {
		send(t, addr, msg)
		want += msg

		deadline := time.Now().Add(2 * time.Second)
		for out.String() != want && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
	}
	if got := out.String(); got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run after cancel = %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down in time")
	}
	if got := m.TotalPipes(); got != 3 {
		t.Errorf("pipes opened = %d, want 3", got)
	}
}

// TestListenMode_CancelIdleConnection verifies cancellation unblocks a
// connection that never sends anything.
func TestListenMode_CancelIdleConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mode := &ListenMode{
		Address:    "127.0.0.1:0",
		Capability: &capability.Relay{},
		stdio:      stdio{Stdout: &lockedBuffer{}},
	}
	addr, errc := startListen(t, ctx, mode)

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != nil && !strings.Contains(err.Error(), "context canceled") {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("idle connection kept listen mode alive after cancel")
	}
}

func TestListenMode_IdleTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()

	mode := &ListenMode{
		Address:    "127.0.0.1:0",
		Timeout:    100 * time.Millisecond,
		Capability: &capability.Relay{},
		stdio:      stdio{Stdout: &lockedBuffer{}},
	}
	addr, errc := startListen(t, ctx, mode)

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	select {
	case err := <-errc:
		if err == nil || !strings.Contains(err.Error(), "timeout") {
			t.Errorf("Run = %v, want an idle timeout", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("idle timeout never fired")
	}
}
