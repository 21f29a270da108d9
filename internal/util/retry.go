package util

import (
	"context"
	"math/rand"
	"time"
)

// Retry calls fn up to maxAttempts times with exponential backoff starting at
// baseDelay. It returns nil on the first successful call, or the last error
// if all attempts fail. The function respects context cancellation between
// retries.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	return RetryJitter(ctx, maxAttempts, baseDelay, 0, nil, fn)
}

// RetryJitter is Retry with full jitter: each sleep is a uniform random
// duration in (0, delay], where delay doubles per attempt and is clamped to
// maxDelay when maxDelay > 0. A nil rng falls back to the global source.
func RetryJitter(ctx context.Context, maxAttempts int, baseDelay, maxDelay time.Duration, rng *rand.Rand, fn func() error) error {
	var err error
	delay := baseDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Don't sleep after the last failed attempt.
		if attempt < maxAttempts-1 {
			sleep := delay
			if rng != nil {
				sleep = time.Duration(rng.Int63n(int64(delay))) + 1
			} else if maxDelay > 0 {
				sleep = time.Duration(rand.Int63n(int64(delay))) + 1
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
			delay *= 2
			if maxDelay > 0 && delay > maxDelay {
				delay = maxDelay
			}
		}
	}

	return err
}
