package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLimiter(t *testing.T, window time.Duration, maxHits int) (*RedisSlidingWindow, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisSlidingWindow(client, window, maxHits), srv
}

func TestRedisSlidingWindow_AllowsUpToMaxHits(t *testing.T) {
	l, _ := newRedisLimiter(t, 60*time.Second, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return base })

	for i := 0; i < 5; i++ {
		res, err := l.Allow(context.Background(), "lead:1.2.3.4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.OK {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	res, err := l.Allow(context.Background(), "lead:1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatal("sixth hit within window should be rejected")
	}
	if res.RetryAfter < time.Second || res.RetryAfter > 60*time.Second {
		t.Fatalf("retry after out of range: %s", res.RetryAfter)
	}
}

func TestRedisSlidingWindow_OldHitsFallOutOfWindow(t *testing.T) {
	l, _ := newRedisLimiter(t, 60*time.Second, 2)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	l.SetClock(func() time.Time { return now })

	l.Allow(context.Background(), "lead:1.2.3.4")
	now = base.Add(30 * time.Second)
	l.Allow(context.Background(), "lead:1.2.3.4")

	now = base.Add(45 * time.Second)
	if res, _ := l.Allow(context.Background(), "lead:1.2.3.4"); res.OK {
		t.Fatal("third hit within window should be rejected")
	}

	// First hit expires at +60s; a slot frees up.
	now = base.Add(61 * time.Second)
	if res, _ := l.Allow(context.Background(), "lead:1.2.3.4"); !res.OK {
		t.Fatal("hit after oldest entry expired should be allowed")
	}
}

func TestRedisSlidingWindow_KeysAreIndependent(t *testing.T) {
	l, _ := newRedisLimiter(t, 60*time.Second, 1)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return base })

	if res, _ := l.Allow(context.Background(), "lead:1.1.1.1"); !res.OK {
		t.Fatal("first key should be allowed")
	}
	if res, _ := l.Allow(context.Background(), "lead:2.2.2.2"); !res.OK {
		t.Fatal("second key should not share the first key's window")
	}
}
