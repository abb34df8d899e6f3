// Package domain holds the pure decision logic of the lead distribution
// engine: the reason vocabulary, fairness ordering, and winner selection.
// Nothing in this package touches the database or the network.
package domain

// Reason is the closed vocabulary of distribution outcomes written to the
// audit log. New reasons may be added; existing ones are never repurposed.
type Reason string

const (
	// ReasonAssigned means a clinic was selected and its quota consumed.
	ReasonAssigned Reason = "ASSIGNED"
	// ReasonNoCandidateClinic means no clinic had active coverage and an
	// active, non-expired subscription for the lead's city and service.
	ReasonNoCandidateClinic Reason = "NO_CANDIDATE_CLINIC"
	// ReasonNoQuota means candidates existed but none had remaining quota.
	ReasonNoQuota Reason = "NO_QUOTA"
)

// Valid reports whether r is part of the known vocabulary. Used to keep
// audit log query filters type-safe.
func (r Reason) Valid() bool {
	switch r {
	case ReasonAssigned, ReasonNoCandidateClinic, ReasonNoQuota:
		return true
	}
	return false
}
