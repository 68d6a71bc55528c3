package errors

import (
	"fmt"
	"io"
	"net"
	"testing"
)

func TestIOError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  IOError
		want string
	}{
		{
			name: "endpoint",
			err:  IOError{Op: "write", Endpoint: "sink", Err: ErrBrokenPipe},
			want: "pipe sink write: broken pipe",
		},
		{
			name: "pipe level",
			err:  IOError{Op: "open", Err: ErrResourceExhausted},
			want: "pipe open: pipe resources exhausted",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPipeOp(t *testing.T) {
	if PipeOp("read", "source", nil) != nil {
		t.Error("PipeOp(nil) should be nil")
	}

	err := PipeOp("read", "source", ErrClosedChannel)
	if !Is(err, ErrClosedChannel) {
		t.Error("should unwrap to ErrClosedChannel")
	}
	var ioErr *IOError
	if !As(err, &ioErr) {
		t.Fatal("should be an *IOError")
	}
	if ioErr.Endpoint != "source" || ioErr.Op != "read" {
		t.Errorf("got endpoint=%q op=%q", ioErr.Endpoint, ioErr.Op)
	}
}

func TestNetworkError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  NetworkError
		want string
	}{
		{
			name: "retryable",
			err:  NetworkError{Op: "dial", Addr: "example.com:80", Err: io.EOF, Retryable: true},
			want: "dial example.com:80: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  NetworkError{Op: "listen", Addr: ":8080", Err: fmt.Errorf("bind failed")},
			want: "listen :8080: bind failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "buffer-size",
				Value:   -1,
				Message: "must be positive",
				Hint:    "omit the flag to use the 64 KiB default",
			},
			want: "config: --buffer-size=-1: must be positive\n  hint: omit the flag to use the 64 KiB default",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "port",
				Message: "required with -l",
			},
			want: "config: --port: required with -l",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connection refused")}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"would block", ErrWouldBlock, true},
		{"wrapped would block", PipeOp("write", "sink", ErrWouldBlock), true},
		{"dial failure", dialErr, true},
		{"network error flag", &NetworkError{Op: "read", Err: io.EOF, Retryable: false}, false},
		{"wrap of dial failure", Wrap("dial", "127.0.0.1:1", dialErr), true},
		{"plain", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsHarmless(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"eof", io.EOF, true},
		{"closed channel", PipeOp("read", "source", ErrClosedChannel), true},
		{"broken pipe", PipeOp("write", "sink", ErrBrokenPipe), true},
		{"net closed", fmt.Errorf("read: %w", net.ErrClosed), true},
		{"unexpected eof", io.ErrUnexpectedEOF, false},
		{"exhausted", ErrResourceExhausted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHarmless(tt.err); got != tt.want {
				t.Errorf("IsHarmless() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	a, b := New("a"), New("b")
	err := Join(a, b)
	if !Is(err, a) || !Is(err, b) {
		t.Error("joined error should match both parts")
	}
	if Unwrap(fmt.Errorf("x: %w", a)) != a {
		t.Error("Unwrap should return the wrapped error")
	}
}
