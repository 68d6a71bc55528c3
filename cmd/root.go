// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"chanio/channels"
	"chanio/config"
	"chanio/internal/core"
	"chanio/internal/metrics"
	"chanio/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X chanio/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the appropriate chanio mode.
func Execute(ctx context.Context, args []string) error {
	// Environment first so that flags, whose defaults come from cfg,
	// take precedence.
	cfg := config.Default()
	if err := config.LoadFromEnv(cfg); err != nil {
		return err
	}

	fs := flag.NewFlagSet("chanio", flag.ContinueOnError)

	// ── connection ───────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Listen mode")
	fs.IntVarP(&cfg.LocalPort, "port", "p", cfg.LocalPort, "Listen port with -l, source port when connecting")
	fs.BoolVarP(&cfg.KeepOpen, "keep-open", "k", cfg.KeepOpen, "Accept multiple connections (with -l)")
	fs.DurationVarP(&cfg.Timeout, "timeout", "w", cfg.Timeout, "Dial timeout")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "Drop a listen-mode connection after this long without data (0 = never)")
	fs.IntVar(&cfg.DialAttempts, "dial-attempts", cfg.DialAttempts, "Connect attempts before giving up")

	// ── pipe ─────────────────────────────────────────────────────
	fs.IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "Pipe buffer size in bytes")
	fs.Int64Var(&cfg.MaxBuffered, "max-buffered", cfg.MaxBuffered, "Total pipe buffer budget in bytes (0 = unlimited)")
	fs.IntVar(&cfg.RateLimit, "rate", cfg.RateLimit, "Drain rate limit in bytes/sec (0 = unlimited)")
	fs.BoolVar(&cfg.ListModes, "list-map-modes", false, "List buffer mapping modes and exit")

	// ── output ───────────────────────────────────────────────────
	fs.BoolVar(&cfg.Digest, "digest", cfg.Digest, "Print a BLAKE2b-256 digest of the transferred bytes")
	fs.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print pipe statistics as JSON on exit")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address")
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the configuration and exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("chanio %s\n", version)
		return nil
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Verbose)
	if cfg.DryRun {
		logger.Info("configuration OK")
		return nil
	}

	// ── build components ─────────────────────────────────────────
	collector := metrics.New()
	provider := channels.NewProvider(channels.ProviderConfig{
		BufferSize:       cfg.BufferSize,
		MaxBufferedBytes: cfg.MaxBuffered,
	}, channels.WithMetrics(collector), channels.WithLogger(logger))

	mode, err := core.Build(cfg, provider, logger)
	if err != nil {
		return err
	}

	if !cfg.Listen && !cfg.ListModes && term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Verbose("reading from a terminal; end input with Ctrl-D")
	}

	if cfg.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.MetricsAddr, collector, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	err = mode.Run(ctx)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.Verbose("interrupted")
		err = nil
	}
	if err != nil {
		collector.RecordError(err.Error())
	}
	if cfg.Stats {
		fmt.Fprintln(os.Stderr, collector.JSON())
	}
	return err
}

// ── helpers ──────────────────────────────────────────────────────────

func parsePositional(cfg *config.Config, remaining []string) error {
	if cfg.Listen || cfg.ListModes {
		switch len(remaining) {
		case 0: // chanio -l -p PORT
		case 1: // chanio -l -p PORT BIND_HOST
			cfg.Host = remaining[0]
		default:
			return fmt.Errorf("too many arguments for listen mode")
		}
		return nil
	}

	switch len(remaining) {
	case 0: // relay stdin to stdout
		return nil
	case 1:
		return fmt.Errorf("port required (use --help for usage)")
	case 2:
		cfg.Host = remaining[0]
		port, err := config.ParsePort(remaining[1])
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Port = port
		return nil
	default:
		return fmt.Errorf("too many arguments")
	}
}

// serveMetrics exposes collector on addr until the returned stop
// function is called.
func serveMetrics(addr string, collector *metrics.Collector, logger *util.Logger) (stop func(), err error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server: %v", err)
		}
	}()
	logger.Verbose("serving metrics on http://%s/metrics", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultGracePeriod)
		defer cancel()
		srv.Shutdown(ctx) //nolint:errcheck
	}, nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `chanio – blocking pipes between stdio and TCP v%s

Bytes written to a pipe's sink are read, in order, from its source.
Every mode moves its data through one pipe per stream.

Usage:
  chanio [options]                            Relay stdin to stdout
  chanio [options] <host> <port>              Send stdin to host:port
  chanio -l -p <port> [options] [bind-host]   Drain connections to stdout
  chanio --list-map-modes                     Show buffer mapping modes

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  Every option may also be set as %s_<NAME>, e.g. %s_BUFFER_SIZE=4096.

Examples:
  chanio -l -p 9000 > out.bin                 Receive a file
  chanio --digest host.example.com 9000 < f   Send a file and print its digest
  chanio --rate 65536 < big.log > /dev/null   Throttled local relay
`, config.EnvPrefix, config.EnvPrefix)
}
