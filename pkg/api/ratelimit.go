package api

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces out calls to an upstream API
type RateLimiter interface {
	// Wait blocks until a call may proceed or ctx is done
	Wait(ctx context.Context) error
}

// IntervalRateLimiter enforces a minimum delay between call starts. Concurrent
// callers are queued in arrival order.
type IntervalRateLimiter struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

// NewIntervalRateLimiter creates a limiter allowing one call per interval
func NewIntervalRateLimiter(interval time.Duration) *IntervalRateLimiter {
	return &IntervalRateLimiter{interval: interval}
}

// Wait reserves the next slot and sleeps until it. A cancelled wait does not
// give its slot back.
func (rl *IntervalRateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rl.mu.Lock()
	now := time.Now()
	slot := rl.next
	if slot.Before(now) {
		slot = now
	}
	rl.next = slot.Add(rl.interval)
	rl.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoOpRateLimiter never waits
type NoOpRateLimiter struct{}

// Wait only reports a done context
func (NoOpRateLimiter) Wait(ctx context.Context) error {
	return ctx.Err()
}

// NewRateLimiter returns an interval limiter, or a no-op one for a
// non-positive interval
func NewRateLimiter(interval time.Duration) RateLimiter {
	if interval <= 0 {
		return NoOpRateLimiter{}
	}
	return NewIntervalRateLimiter(interval)
}
