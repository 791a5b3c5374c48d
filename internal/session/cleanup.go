package session

import (
	"context"
	"log/slog"
	"time"

	"wallet-checkout/internal/cartapi"
)

// Cleanup defaults. A cap on the per-wait delay prevents unbounded
// backoff growth.
const (
	DefaultCleanupBaseDelay   = 500 * time.Millisecond
	DefaultCleanupMaxDelay    = 30 * time.Second
	DefaultCleanupMaxAttempts = 3
)

// CleanupConfig tunes the personal-data scrub retry policy.
// Zero values fall back to the defaults above.
type CleanupConfig struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

// CleanupPolicy scrubs personally-identifying data from an abandoned cart
// with bounded exponential backoff. Exhausting retries logs and discards
// the error; this path never blocks or fails the user-visible hand-off.
type CleanupPolicy struct {
	base        time.Duration
	maxDelay    time.Duration
	maxAttempts int
	logger      *slog.Logger

	// sleep is replaceable in tests. Returns early with an error when the
	// context is canceled.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCleanupPolicy builds a policy from cfg, filling in defaults.
func NewCleanupPolicy(cfg CleanupConfig, logger *slog.Logger) *CleanupPolicy {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultCleanupBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultCleanupMaxDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultCleanupMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupPolicy{
		base:        cfg.BaseDelay,
		maxDelay:    cfg.MaxDelay,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// Run attempts the personal-data scrub until it succeeds or retries are
// exhausted. The first attempt is immediate; attempt n (0-indexed) waits
// min(maxDelay, base × 2^(n+1)) before the next one.
func (p *CleanupPolicy) Run(ctx context.Context, client cartapi.Client, cartID string) {
	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		lastErr = client.RemovePersonalData(ctx, cartID)
		if lastErr == nil {
			if attempt > 0 {
				p.logger.Info("personal data scrub succeeded after retry",
					slog.String("cart_id", cartID),
					slog.Int("attempt", attempt),
				)
			}
			return
		}
		if attempt == p.maxAttempts-1 {
			break
		}
		if err := p.sleep(ctx, p.delayAfter(attempt)); err != nil {
			lastErr = err
			break
		}
	}

	// Best effort only. The session hand-off has already happened.
	p.logger.Error("personal data scrub abandoned",
		slog.String("cart_id", cartID),
		slog.Int("attempts", p.maxAttempts),
		slog.String("error", lastErr.Error()),
	)
}

// delayAfter returns the wait following attempt n (0-indexed).
func (p *CleanupPolicy) delayAfter(attempt int) time.Duration {
	delay := p.base << uint(attempt+1)
	if delay > p.maxDelay || delay <= 0 {
		return p.maxDelay
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
