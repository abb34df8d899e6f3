package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"dentallead_backend/internal/leads/domain"
)

func grantWithQuota(used, total int) domain.Grant {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Grant{
		SubscriptionID: uuid.New(),
		QuotaTotal:     total,
		QuotaUsed:      used,
		StartedAt:      now.Add(-24 * time.Hour),
		ExpiresAt:      now.Add(24 * time.Hour),
	}
}

func TestLostQuotaRaceRetriesNextCandidate(t *testing.T) {
	assigned := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	first := domain.Candidate{ClinicID: uuid.New(), Grant: grantWithQuota(0, 5)}
	second := domain.Candidate{ClinicID: uuid.New(), LastAssignedAt: &assigned, Grant: grantWithQuota(0, 5)}
	candidates := []domain.Candidate{first, second}

	sel := domain.Select(candidates)
	if sel.Winner == nil || sel.Winner.ClinicID != first.ClinicID {
		t.Fatalf("expected never-assigned clinic to win first, got %+v", sel.Winner)
	}

	// A concurrent distribution spent the winner's last slot between the
	// candidate read and the increment.
	markExhausted(candidates, sel.Winner.Grant.SubscriptionID)

	sel = domain.Select(candidates)
	if sel.Winner == nil {
		t.Fatalf("expected a fallback winner, got reason %s", sel.Reason)
	}
	if sel.Winner.ClinicID != second.ClinicID {
		t.Fatalf("expected the next eligible clinic to win, got %s", sel.Winner.ClinicID)
	}
}

func TestAllCandidatesRacedDegradesToNoQuota(t *testing.T) {
	first := domain.Candidate{ClinicID: uuid.New(), Grant: grantWithQuota(0, 1)}
	second := domain.Candidate{ClinicID: uuid.New(), Grant: grantWithQuota(0, 1)}
	candidates := []domain.Candidate{first, second}

	markExhausted(candidates, first.Grant.SubscriptionID)
	markExhausted(candidates, second.Grant.SubscriptionID)

	sel := domain.Select(candidates)
	if sel.Winner != nil {
		t.Fatalf("expected no winner, got %s", sel.Winner.ClinicID)
	}
	if sel.Reason != domain.ReasonNoQuota {
		t.Fatalf("expected %s, got %s", domain.ReasonNoQuota, sel.Reason)
	}
}

func TestMarkExhaustedOnlyTouchesRacedSubscription(t *testing.T) {
	first := domain.Candidate{ClinicID: uuid.New(), Grant: grantWithQuota(0, 5)}
	second := domain.Candidate{ClinicID: uuid.New(), Grant: grantWithQuota(2, 5)}
	candidates := []domain.Candidate{first, second}

	markExhausted(candidates, first.Grant.SubscriptionID)

	if candidates[0].Grant.HasQuota() {
		t.Fatal("raced candidate still reports free quota")
	}
	if candidates[1].Grant.QuotaUsed != 2 {
		t.Fatalf("untouched candidate mutated: quota used %d", candidates[1].Grant.QuotaUsed)
	}
}
