package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestSlidingWindow_AllowsUpToMaxHits(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return base })

	for i := 0; i < 5; i++ {
		res, err := l.Allow(context.Background(), "1.2.3.4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.OK {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
}

func TestSlidingWindow_SixthHitRejectedWithRetryAfter(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	l.SetClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		now = base.Add(time.Duration(i) * time.Second)
		if res, _ := l.Allow(context.Background(), "1.2.3.4"); !res.OK {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	now = base.Add(10 * time.Second)
	res, err := l.Allow(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatal("sixth hit within window should be rejected")
	}
	// Oldest hit at base, window 60s, now base+10s: next slot in 50s.
	if res.RetryAfter != 50*time.Second {
		t.Fatalf("expected retry after 50s, got %s", res.RetryAfter)
	}
}

func TestSlidingWindow_AllowsAgainAfterWindowElapses(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	l.SetClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		l.Allow(context.Background(), "1.2.3.4")
	}

	now = base.Add(61 * time.Second)
	res, _ := l.Allow(context.Background(), "1.2.3.4")
	if !res.OK {
		t.Fatal("hit after window elapsed should be allowed")
	}
}

func TestSlidingWindow_RetryAfterNeverBelowOneSecond(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 1)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	l.SetClock(func() time.Time { return now })

	l.Allow(context.Background(), "1.2.3.4")

	now = base.Add(59*time.Second + 900*time.Millisecond)
	res, _ := l.Allow(context.Background(), "1.2.3.4")
	if res.OK {
		t.Fatal("hit within window should be rejected")
	}
	if res.RetryAfter < time.Second {
		t.Fatalf("retry after should be at least 1s, got %s", res.RetryAfter)
	}
}

func TestSlidingWindow_RetryAfterRoundsUpToWholeSeconds(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 1)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	l.SetClock(func() time.Time { return now })

	l.Allow(context.Background(), "1.2.3.4")

	// 30.4s of the window remain; the hint must not understate the wait.
	now = base.Add(29*time.Second + 600*time.Millisecond)
	res, _ := l.Allow(context.Background(), "1.2.3.4")
	if res.OK {
		t.Fatal("hit within window should be rejected")
	}
	if res.RetryAfter != 31*time.Second {
		t.Fatalf("expected retry after 31s, got %s", res.RetryAfter)
	}
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 1)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return base })

	if res, _ := l.Allow(context.Background(), "1.1.1.1"); !res.OK {
		t.Fatal("first key should be allowed")
	}
	if res, _ := l.Allow(context.Background(), "2.2.2.2"); !res.OK {
		t.Fatal("second key should not share the first key's window")
	}
	if res, _ := l.Allow(context.Background(), "1.1.1.1"); res.OK {
		t.Fatal("first key should now be over its limit")
	}
}

func TestSlidingWindow_RejectedHitsDoNotExtendWindow(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 1)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	l.SetClock(func() time.Time { return now })

	l.Allow(context.Background(), "1.2.3.4")

	// Hammering while blocked must not push the free slot further away.
	for i := 1; i <= 30; i++ {
		now = base.Add(time.Duration(i) * time.Second)
		if res, _ := l.Allow(context.Background(), "1.2.3.4"); res.OK {
			t.Fatalf("hit at +%ds should be rejected", i)
		}
	}

	now = base.Add(61 * time.Second)
	if res, _ := l.Allow(context.Background(), "1.2.3.4"); !res.OK {
		t.Fatal("hit after original window should be allowed")
	}
}
