package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Grant is a clinic's current quota grant: the single most recent active,
// non-expired subscription attached to a candidate at selection time.
type Grant struct {
	SubscriptionID uuid.UUID
	QuotaTotal     int
	QuotaUsed      int
	StartedAt      time.Time
	ExpiresAt      time.Time
}

// HasQuota reports whether the grant has capacity for one more lead.
func (g Grant) HasQuota() bool {
	return g.QuotaUsed < g.QuotaTotal
}

// Remaining returns the number of leads the grant can still receive.
func (g Grant) Remaining() int {
	if g.QuotaUsed >= g.QuotaTotal {
		return 0
	}
	return g.QuotaTotal - g.QuotaUsed
}

// Candidate is a clinic eligible for a lead on coverage and subscription
// grounds, before the quota check.
type Candidate struct {
	ClinicID       uuid.UUID
	LastAssignedAt *time.Time
	Grant          Grant
}

// Selection is the outcome of picking a winner from a candidate set.
type Selection struct {
	// Winner is nil when no clinic could be selected.
	Winner *Candidate
	Reason Reason
}

// OrderCandidates sorts candidates in fairness order: least recently
// assigned first, never-assigned clinics before all others, ties broken by
// clinic ID ascending so identical inputs always produce identical order.
func OrderCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].LastAssignedAt, candidates[j].LastAssignedAt
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		return candidates[i].ClinicID.String() < candidates[j].ClinicID.String()
	})
}

// Select orders the candidates, filters to those with remaining quota, and
// picks the head. Deterministic: identical inputs always yield the same
// selection.
func Select(candidates []Candidate) Selection {
	if len(candidates) == 0 {
		return Selection{Reason: ReasonNoCandidateClinic}
	}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	OrderCandidates(ordered)

	for i := range ordered {
		if ordered[i].Grant.HasQuota() {
			winner := ordered[i]
			return Selection{Winner: &winner, Reason: ReasonAssigned}
		}
	}

	return Selection{Reason: ReasonNoQuota}
}
