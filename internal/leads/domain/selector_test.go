package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func candidate(id string, last *time.Time, used, total int) Candidate {
	return Candidate{
		ClinicID:       uuid.MustParse(id),
		LastAssignedAt: last,
		Grant: Grant{
			SubscriptionID: uuid.New(),
			QuotaTotal:     total,
			QuotaUsed:      used,
		},
	}
}

const (
	idA = "11111111-1111-1111-1111-111111111111"
	idB = "22222222-2222-2222-2222-222222222222"
	idC = "33333333-3333-3333-3333-333333333333"
)

func TestSelectNoCandidates(t *testing.T) {
	sel := Select(nil)
	if sel.Winner != nil {
		t.Fatalf("expected no winner, got %v", sel.Winner.ClinicID)
	}
	if sel.Reason != ReasonNoCandidateClinic {
		t.Fatalf("expected reason %s, got %s", ReasonNoCandidateClinic, sel.Reason)
	}
}

func TestSelectAllQuotaExhausted(t *testing.T) {
	cands := []Candidate{
		candidate(idA, ts("2026-01-01T10:00:00Z"), 10, 10),
		candidate(idB, ts("2026-01-02T10:00:00Z"), 3, 3),
	}

	sel := Select(cands)
	if sel.Winner != nil {
		t.Fatalf("expected no winner, got %v", sel.Winner.ClinicID)
	}
	if sel.Reason != ReasonNoQuota {
		t.Fatalf("expected reason %s, got %s", ReasonNoQuota, sel.Reason)
	}
}

func TestSelectLeastRecentlyAssignedWins(t *testing.T) {
	cands := []Candidate{
		candidate(idB, ts("2026-01-05T10:00:00Z"), 0, 5),
		candidate(idA, ts("2026-01-01T10:00:00Z"), 0, 5),
	}

	sel := Select(cands)
	if sel.Winner == nil {
		t.Fatal("expected a winner")
	}
	if sel.Winner.ClinicID != uuid.MustParse(idA) {
		t.Fatalf("expected least recently assigned clinic to win, got %s", sel.Winner.ClinicID)
	}
	if sel.Reason != ReasonAssigned {
		t.Fatalf("expected reason %s, got %s", ReasonAssigned, sel.Reason)
	}
}

func TestSelectNeverAssignedRanksFirst(t *testing.T) {
	cands := []Candidate{
		candidate(idA, ts("2020-01-01T00:00:00Z"), 0, 5),
		candidate(idB, nil, 0, 5),
	}

	sel := Select(cands)
	if sel.Winner == nil {
		t.Fatal("expected a winner")
	}
	if sel.Winner.ClinicID != uuid.MustParse(idB) {
		t.Fatalf("expected never-assigned clinic to win, got %s", sel.Winner.ClinicID)
	}
}

func TestSelectSkipsExhaustedHead(t *testing.T) {
	cands := []Candidate{
		candidate(idA, nil, 5, 5),
		candidate(idB, ts("2026-01-01T10:00:00Z"), 2, 5),
	}

	sel := Select(cands)
	if sel.Winner == nil {
		t.Fatal("expected a winner")
	}
	if sel.Winner.ClinicID != uuid.MustParse(idB) {
		t.Fatalf("expected clinic with remaining quota to win, got %s", sel.Winner.ClinicID)
	}
}

func TestSelectTieBrokenByClinicID(t *testing.T) {
	same := ts("2026-01-01T10:00:00Z")
	cands := []Candidate{
		candidate(idC, same, 0, 5),
		candidate(idA, same, 0, 5),
		candidate(idB, same, 0, 5),
	}

	sel := Select(cands)
	if sel.Winner == nil {
		t.Fatal("expected a winner")
	}
	if sel.Winner.ClinicID != uuid.MustParse(idA) {
		t.Fatalf("expected lowest clinic id to win the tie, got %s", sel.Winner.ClinicID)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	cands := []Candidate{
		candidate(idB, ts("2026-01-03T10:00:00Z"), 1, 5),
		candidate(idA, nil, 0, 5),
		candidate(idC, ts("2026-01-02T10:00:00Z"), 0, 5),
	}

	first := Select(cands)
	for i := 0; i < 10; i++ {
		again := Select(cands)
		if again.Winner.ClinicID != first.Winner.ClinicID {
			t.Fatalf("selection not deterministic: %s vs %s", again.Winner.ClinicID, first.Winner.ClinicID)
		}
	}
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	cands := []Candidate{
		candidate(idC, ts("2026-01-03T10:00:00Z"), 0, 5),
		candidate(idA, ts("2026-01-01T10:00:00Z"), 0, 5),
	}

	Select(cands)
	if cands[0].ClinicID != uuid.MustParse(idC) {
		t.Fatal("Select reordered the caller's slice")
	}
}

func TestOrderCandidatesNullsFirstThenOldest(t *testing.T) {
	cands := []Candidate{
		candidate(idC, ts("2026-01-01T10:00:00Z"), 0, 5),
		candidate(idB, ts("2025-06-01T10:00:00Z"), 0, 5),
		candidate(idA, nil, 0, 5),
	}

	OrderCandidates(cands)

	want := []string{idA, idB, idC}
	for i, w := range want {
		if cands[i].ClinicID != uuid.MustParse(w) {
			t.Fatalf("position %d: expected %s, got %s", i, w, cands[i].ClinicID)
		}
	}
}

func TestGrantRemaining(t *testing.T) {
	g := Grant{QuotaTotal: 5, QuotaUsed: 3}
	if got := g.Remaining(); got != 2 {
		t.Fatalf("expected remaining 2, got %d", got)
	}

	g = Grant{QuotaTotal: 5, QuotaUsed: 5}
	if g.HasQuota() {
		t.Fatal("exhausted grant reported quota")
	}
	if got := g.Remaining(); got != 0 {
		t.Fatalf("expected remaining 0, got %d", got)
	}
}
