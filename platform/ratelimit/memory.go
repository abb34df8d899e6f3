package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow is an in-process sliding-window limiter. It keeps a timestamp
// list per key, prunes entries older than the window on every check, and is
// safe for concurrent use. State is process-local: when the service is scaled
// horizontally the effective limit multiplies by the instance count, so use
// the Redis limiter there instead.
type SlidingWindow struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	window  time.Duration
	maxHits int
	now     func() time.Time
}

// NewSlidingWindow creates an in-memory limiter allowing maxHits per window.
func NewSlidingWindow(window time.Duration, maxHits int) *SlidingWindow {
	return &SlidingWindow{
		hits:    make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
		now:     time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (l *SlidingWindow) SetClock(now func() time.Time) {
	l.now = now
}

// Allow records a hit for key if the window has capacity.
func (l *SlidingWindow) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.maxHits {
		l.hits[key] = kept
		return Result{OK: false, RetryAfter: retryAfter(l.window, now, kept[0])}, nil
	}

	l.hits[key] = append(kept, now)
	return Result{OK: true}, nil
}

// Compile-time check that SlidingWindow implements Limiter.
var _ Limiter = (*SlidingWindow)(nil)
