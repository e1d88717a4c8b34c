package ai

import (
	"context"
	"errors"
	"time"
)

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
)

// retryable reports whether the classified error is worth another attempt.
// Rate limits and server-side failures are transient; auth and quota
// problems are not.
func retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}

// withRetries runs call up to maxRetries+1 times with exponential backoff,
// stopping early on non-transient failures or context cancellation.
func withRetries(ctx context.Context, maxRetries int, base time.Duration, call func(context.Context) (Reply, error)) (Reply, error) {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	if base <= 0 {
		base = defaultBaseBackoff
	}

	var lastErr error
	backoff := base
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Reply{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		reply, err := call(ctx)
		if err == nil {
			return reply, nil
		}

		lastErr = err
		if !retryable(err) {
			return Reply{}, err
		}
	}

	return Reply{}, lastErr
}
