package util

import (
	"context"
	"time"
)

// Retry calls fn up to maxAttempts times with exponential backoff starting
// at baseDelay, doubling after each failure. It returns nil on the first
// successful call, the context error if the context is cancelled between
// attempts, or the last error once attempts are exhausted.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	delay := baseDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= maxAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
