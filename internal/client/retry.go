package client

import (
	"context"
	"math/rand"
	"time"

	"mason/internal/logging"
)

// RetryConfig holds retry settings shared by all adapters.
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// CalculateBackoff computes exponential backoff with jitter. Jitter keeps
// simultaneous retries from stampeding a recovering endpoint.
func CalculateBackoff(baseDelay time.Duration, attempt int, maxDelay time.Duration) time.Duration {
	delay := baseDelay * time.Duration(1<<uint(attempt))
	if delay > maxDelay {
		delay = maxDelay
	}

	// rand.Int63n panics on a non-positive argument, which a zero
	// configured delay produces.
	if delay/4 <= 0 {
		return delay
	}
	jitter := time.Duration(rand.Int63n(int64(delay / 4)))
	return delay + jitter
}

// withRetries runs fn until it succeeds, the error is not retryable, or
// attempts are exhausted.
func withRetries(ctx context.Context, provider string, cfg RetryConfig, fn func() (*ChatResponse, error)) (*ChatResponse, error) {
	maxDelay := cfg.MaxDelay
	if maxDelay == 0 {
		maxDelay = 30 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := CalculateBackoff(cfg.RetryDelay, attempt-1, maxDelay)
			logging.Info("retrying request", "provider", provider, "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !IsRetryableError(err) {
			return nil, err
		}
		logging.Warn("request failed, will retry", "provider", provider, "attempt", attempt, "error", err)
	}

	return nil, lastErr
}
