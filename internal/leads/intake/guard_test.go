package intake

import (
	"context"
	"testing"
	"time"

	"dentallead_backend/platform/ratelimit"
)

func newTestGuard(window time.Duration, maxHits int) (*Guard, *ratelimit.SlidingWindow, *time.Time) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewSlidingWindow(window, maxHits)
	limiter.SetClock(func() time.Time { return now })
	return NewGuard(limiter), limiter, &now
}

func TestGuardAcceptsCleanSubmission(t *testing.T) {
	guard, _, _ := newTestGuard(time.Minute, 5)

	dec, err := guard.Check(context.Background(), Submission{Consent: true, CallerIP: "203.0.113.9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Verdict != VerdictAccept {
		t.Fatalf("expected accept, got %v", dec.Verdict)
	}
}

func TestGuardHoneypotWinsOverEverything(t *testing.T) {
	guard, _, _ := newTestGuard(time.Minute, 0)

	dec, err := guard.Check(context.Background(), Submission{
		Honeypot: "https://spam.example",
		Consent:  false,
		CallerIP: "203.0.113.9",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Verdict != VerdictSpam {
		t.Fatalf("expected spam verdict, got %v", dec.Verdict)
	}
}

func TestGuardRequiresConsent(t *testing.T) {
	guard, _, _ := newTestGuard(time.Minute, 5)

	dec, err := guard.Check(context.Background(), Submission{Consent: false, CallerIP: "203.0.113.9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Verdict != VerdictConsentMissing {
		t.Fatalf("expected consent verdict, got %v", dec.Verdict)
	}
}

func TestGuardConsentFailureDoesNotConsumeWindow(t *testing.T) {
	guard, _, _ := newTestGuard(time.Minute, 1)

	for i := 0; i < 3; i++ {
		dec, err := guard.Check(context.Background(), Submission{Consent: false, CallerIP: "203.0.113.9"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dec.Verdict != VerdictConsentMissing {
			t.Fatalf("expected consent verdict, got %v", dec.Verdict)
		}
	}

	dec, err := guard.Check(context.Background(), Submission{Consent: true, CallerIP: "203.0.113.9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Verdict != VerdictAccept {
		t.Fatalf("consent failures consumed the rate-limit window: %v", dec.Verdict)
	}
}

func TestGuardRateLimitsSixthSubmission(t *testing.T) {
	guard, _, _ := newTestGuard(time.Minute, 5)

	sub := Submission{Consent: true, CallerIP: "203.0.113.9"}
	for i := 0; i < 5; i++ {
		dec, err := guard.Check(context.Background(), sub)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dec.Verdict != VerdictAccept {
			t.Fatalf("submission %d: expected accept, got %v", i+1, dec.Verdict)
		}
	}

	dec, err := guard.Check(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Verdict != VerdictRateLimited {
		t.Fatalf("expected rate limited, got %v", dec.Verdict)
	}
	if dec.RetryAfter < time.Second {
		t.Fatalf("expected retry-after of at least 1s, got %v", dec.RetryAfter)
	}
}

func TestGuardWindowRecovers(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewSlidingWindow(time.Minute, 1)
	limiter.SetClock(func() time.Time { return now })
	guard := NewGuard(limiter)

	sub := Submission{Consent: true, CallerIP: "203.0.113.9"}
	if dec, _ := guard.Check(context.Background(), sub); dec.Verdict != VerdictAccept {
		t.Fatalf("expected first submission accepted, got %v", dec.Verdict)
	}
	if dec, _ := guard.Check(context.Background(), sub); dec.Verdict != VerdictRateLimited {
		t.Fatalf("expected second submission limited, got %v", dec.Verdict)
	}

	now = now.Add(61 * time.Second)
	if dec, _ := guard.Check(context.Background(), sub); dec.Verdict != VerdictAccept {
		t.Fatalf("expected submission after window accepted, got %v", dec.Verdict)
	}
}
