// Package intake guards the public lead endpoint before anything is
// persisted: honeypot, consent gate, and the per-IP sliding window limit.
package intake

import (
	"context"
	"strings"
	"time"

	"dentallead_backend/platform/ratelimit"
)

// Verdict classifies a submission before it reaches the distribution engine.
type Verdict int

const (
	// VerdictAccept lets the submission through to distribution.
	VerdictAccept Verdict = iota
	// VerdictSpam means the honeypot fired. Caller must respond with a
	// success shape and persist nothing.
	VerdictSpam
	// VerdictRateLimited means the caller exceeded the submission window.
	VerdictRateLimited
	// VerdictConsentMissing means consent was not explicitly given.
	VerdictConsentMissing
)

// Submission carries the guard-relevant slice of an intake request.
type Submission struct {
	// Honeypot is the hidden form field. Humans leave it empty.
	Honeypot string
	Consent  bool
	CallerIP string
}

// Decision is the guard's outcome for one submission.
type Decision struct {
	Verdict    Verdict
	RetryAfter time.Duration
}

// Guard runs the pre-persistence checks in order: honeypot, consent, rate
// limit. It has no persistent side effects beyond the limiter's own window
// bookkeeping.
type Guard struct {
	limiter ratelimit.Limiter
}

func NewGuard(limiter ratelimit.Limiter) *Guard {
	return &Guard{limiter: limiter}
}

// Check classifies one submission. Only accepted submissions consume a slot
// in the rate-limit window; spam and consent failures are rejected before
// the limiter is consulted.
func (g *Guard) Check(ctx context.Context, sub Submission) (Decision, error) {
	if strings.TrimSpace(sub.Honeypot) != "" {
		return Decision{Verdict: VerdictSpam}, nil
	}

	if !sub.Consent {
		return Decision{Verdict: VerdictConsentMissing}, nil
	}

	res, err := g.limiter.Allow(ctx, sub.CallerIP)
	if err != nil {
		return Decision{}, err
	}
	if !res.OK {
		return Decision{Verdict: VerdictRateLimited, RetryAfter: res.RetryAfter}, nil
	}

	return Decision{Verdict: VerdictAccept}, nil
}
