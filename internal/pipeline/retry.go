package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/internal/storage"
)

// isRetryable reports whether a storage error is worth another attempt.
func isRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidKey):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

// calculateDelay returns the backoff before the given retry (1-based).
func calculateDelay(cfg model.RetryConfig, attempt int) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffMultiplier, float64(attempt-1))
	if maxDelay := float64(cfg.MaxDelay); maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	if cfg.Jitter && delay > 0 {
		// +/- 10%
		delay += delay * 0.1 * (2*rand.Float64() - 1)
	}
	return time.Duration(delay)
}

// withRetry runs fn until it succeeds, fails with a non-retryable error, or
// the attempts are exhausted.
func withRetry(ctx context.Context, cfg model.RetryConfig, logger *slog.Logger, op string, fn func() error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !isRetryable(err) || attempt == attempts {
			break
		}

		delay := calculateDelay(cfg, attempt)
		logger.Warn("🔄 Retrying operation", "op", op, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
