package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlidingWindow is a sliding-window limiter backed by a Redis sorted set
// per key, scored by hit time. All instances of the service share the same
// window, which keeps the limit accurate under horizontal scaling.
type RedisSlidingWindow struct {
	client  redis.UniversalClient
	window  time.Duration
	maxHits int
	prefix  string
	now     func() time.Time
}

// NewRedisSlidingWindow creates a Redis-backed limiter allowing maxHits per window.
func NewRedisSlidingWindow(client redis.UniversalClient, window time.Duration, maxHits int) *RedisSlidingWindow {
	return &RedisSlidingWindow{
		client:  client,
		window:  window,
		maxHits: maxHits,
		prefix:  "ratelimit:",
		now:     time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (l *RedisSlidingWindow) SetClock(now func() time.Time) {
	l.now = now
}

// Allow records a hit for key if the window has capacity.
func (l *RedisSlidingWindow) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := l.prefix + key
	now := l.now()
	cutoff := now.Add(-l.window)

	if err := l.client.ZRemRangeByScore(ctx, redisKey, "-inf",
		strconv.FormatInt(cutoff.UnixMilli(), 10)).Err(); err != nil {
		return Result{}, fmt.Errorf("ratelimit prune: %w", err)
	}

	count, err := l.client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit count: %w", err)
	}

	if count >= int64(l.maxHits) {
		oldest, err := l.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err != nil {
			return Result{}, fmt.Errorf("ratelimit oldest: %w", err)
		}
		oldestAt := now
		if len(oldest) > 0 {
			oldestAt = time.UnixMilli(int64(oldest[0].Score))
		}
		return Result{OK: false, RetryAfter: retryAfter(l.window, now, oldestAt)}, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	pipe := l.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	pipe.PExpire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("ratelimit record: %w", err)
	}

	return Result{OK: true}, nil
}

// Compile-time check that RedisSlidingWindow implements Limiter.
var _ Limiter = (*RedisSlidingWindow)(nil)
