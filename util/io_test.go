package util

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestCopy(t *testing.T) {
	payload := strings.Repeat("chanio ", 20000) // larger than one buffer
	var out bytes.Buffer

	n, err := Copy(context.Background(), &out, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != int64(len(payload)) {
		t.Errorf("copied %d bytes, want %d", n, len(payload))
	}
	if out.String() != payload {
		t.Error("output differs from input")
	}
}

func TestCopy_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := Copy(ctx, io.Discard, strings.NewReader("data"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n != 0 {
		t.Errorf("copied %d bytes after cancel", n)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestCopy_WriteError(t *testing.T) {
	_, err := Copy(context.Background(), failingWriter{}, strings.NewReader("data"))
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("err = %v, want io.ErrClosedPipe", err)
	}
}

func TestThrottledWriter_PassesData(t *testing.T) {
	var out bytes.Buffer
	w := NewThrottledWriter(context.Background(), &out, 1<<20)

	n, err := w.Write([]byte("hello world"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 11 || out.String() != "hello world" {
		t.Errorf("wrote %d bytes %q", n, out.String())
	}
}

func TestThrottledWriter_Limits(t *testing.T) {
	var out bytes.Buffer
	// 1000 B/s with a 1000-byte burst: 2500 bytes need at least ~1.5s.
	w := NewThrottledWriter(context.Background(), &out, 1000)

	start := time.Now()
	if _, err := w.Write(make([]byte, 2500)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("write finished in %v, expected throttling", elapsed)
	}
	if out.Len() != 2500 {
		t.Errorf("wrote %d bytes, want 2500", out.Len())
	}
}

func TestThrottledWriter_Cancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	w := NewThrottledWriter(ctx, io.Discard, 10)
	n, err := w.Write(make([]byte, 1000))
	if err == nil {
		t.Fatal("expected error once the context expires")
	}
	if n >= 1000 {
		t.Errorf("wrote %d bytes despite cancellation", n)
	}
}
