package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces operations evenly so that at most perMinute of them run
// in any one minute window. The first call never waits.
type RateLimiter struct {
	interval time.Duration
	next     time.Time
	mu       sync.Mutex
}

// NewRateLimiter creates a RateLimiter allowing perMinute operations per
// minute. A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	var interval time.Duration
	if perMinute > 0 {
		interval = time.Minute / time.Duration(perMinute)
	}
	return &RateLimiter{interval: interval}
}

// Wait blocks until the caller's slot arrives or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.interval <= 0 {
		return ctx.Err()
	}

	rl.mu.Lock()
	now := time.Now()
	wait := rl.next.Sub(now)
	if wait < 0 {
		wait = 0
		rl.next = now
	}
	rl.next = rl.next.Add(rl.interval)
	rl.mu.Unlock()

	if wait == 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
