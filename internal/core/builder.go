package core

import (
	"time"

	"chanio/channels"
	"chanio/config"
	"chanio/internal/capability"
	cherr "chanio/internal/errors"
	"chanio/internal/retry"
	"chanio/internal/transport"
	"chanio/util"
)

// Build constructs the appropriate Mode from the given configuration.
// Every pipe the mode opens comes from provider, so its buffer budget
// and metrics apply to the whole run.
func Build(cfg *config.Config, provider *channels.Provider, logger *util.Logger) (Mode, error) {
	if provider == nil {
		provider = channels.DefaultProvider()
	}
	switch {
	case cfg.ListModes:
		return &ListModesMode{}, nil
	case cfg.Listen:
		return buildListen(cfg, provider, logger), nil
	case cfg.IsConnect():
		return buildConnect(cfg, provider, logger), nil
	default:
		return &RelayMode{
			Provider:   provider,
			Capability: buildCapability(cfg),
			Logger:     logger.Named("relay"),
		}, nil
	}
}

// ── mode builders ────────────────────────────────────────────────────

func buildConnect(cfg *config.Config, provider *channels.Provider, logger *util.Logger) Mode {
	logger = logger.Named("connect")

	b := retry.DialBackoff(cfg.DialAttempts)
	b.Retryable = cherr.IsRetryable
	b.OnRetry = func(attempt int, wait time.Duration, err error) {
		logger.Verbose("attempt %d failed (%v), retrying in %s", attempt, err, wait.Round(time.Millisecond))
	}

	return &ConnectMode{
		Dialer:     &transport.TCPDialer{Timeout: cfg.Timeout, LocalPort: cfg.LocalPort},
		Backoff:    b,
		Address:    util.FormatAddr(cfg.Host, cfg.Port),
		Provider:   provider,
		Capability: buildCapability(cfg),
		Logger:     logger,
	}
}

func buildListen(cfg *config.Config, provider *channels.Provider, logger *util.Logger) Mode {
	return &ListenMode{
		Address:    util.ListenAddr(cfg.Host, cfg.LocalPort),
		KeepOpen:   cfg.KeepOpen,
		Timeout:    cfg.IdleTimeout,
		Provider:   provider,
		Capability: buildCapability(cfg),
		Metrics:    provider.Metrics(),
		Logger:     logger.Named("listen"),
	}
}

// ── shared helpers ───────────────────────────────────────────────────

// buildCapability selects what happens to each session's bytes.
func buildCapability(cfg *config.Config) capability.Capability {
	return &capability.Relay{
		RateLimit: cfg.RateLimit,
		Digest:    cfg.Digest,
	}
}
