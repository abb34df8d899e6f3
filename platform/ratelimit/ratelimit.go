// Package ratelimit provides sliding-window rate limiting for admission control.
// This is part of the platform layer and contains no business logic.
//
// Two implementations are provided: an in-process limiter for single-instance
// deployments and a Redis-backed limiter for horizontally scaled deployments.
// Callers depend only on the Limiter interface.
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of an admission check.
type Result struct {
	// OK is true when the call was admitted and counted against the window.
	OK bool
	// RetryAfter is how long the caller must wait for the next free slot.
	// Only set when OK is false; never below one second.
	RetryAfter time.Duration
}

// Limiter bounds the number of accepted calls per key within a sliding window.
type Limiter interface {
	// Allow records a hit for key if the window has capacity. It never
	// counts rejected calls against the window.
	Allow(ctx context.Context, key string) (Result, error)
}

// retryAfter computes the wait until the oldest hit falls out of the window,
// rounded up to whole seconds and clamped to at least one second. Rounding up
// keeps the hint from being shorter than the actual wait.
func retryAfter(window time.Duration, now, oldest time.Time) time.Duration {
	wait := window - now.Sub(oldest)
	if wait <= time.Second {
		return time.Second
	}
	if rem := wait % time.Second; rem != 0 {
		wait += time.Second - rem
	}
	return wait
}
