package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"dentallead_backend/internal/leads/domain"
)

// Lead is a stored consumer request, including its assignment if one exists.
type Lead struct {
	ID                 uuid.UUID  `json:"id"`
	City               string     `json:"city"`
	Service            string     `json:"service"`
	FullName           string     `json:"fullName"`
	Phone              string     `json:"phone"`
	Email              *string    `json:"email,omitempty"`
	Message            *string    `json:"message,omitempty"`
	Intent             string     `json:"intent"`
	Source             string     `json:"source"`
	Status             string     `json:"status"`
	Note               *string    `json:"note,omitempty"`
	ContactedAt        *time.Time `json:"contactedAt,omitempty"`
	ConsentAt          time.Time  `json:"consentAt"`
	ConsentTextVersion string     `json:"consentTextVersion"`
	AssignedClinicID   *uuid.UUID `json:"assignedClinicId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// Lead statuses a clinic can move a lead through.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusWon       = "won"
	StatusLost      = "lost"
)

// ValidStatus reports whether s is a known lead status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusWon, StatusLost:
		return true
	}
	return false
}

// DistributeParams is a fully normalized, consent-backed submission ready to
// be persisted and routed.
type DistributeParams struct {
	City               string
	Service            string
	FullName           string
	Phone              string
	Email              *string
	Message            *string
	Intent             string
	Source             string
	ConsentAt          time.Time
	ConsentTextVersion string
	IP                 string
	UserAgent          string
}

// DistributeResult reports the committed outcome of one distribution attempt.
type DistributeResult struct {
	LeadID         uuid.UUID
	Assigned       bool
	Reason         domain.Reason
	ClinicID       *uuid.UUID
	SubscriptionID *uuid.UUID
	// QuotaRemaining is the winner's remaining quota after the increment.
	QuotaRemaining int
}

// DistributionLog is one audit row for a distribution attempt.
type DistributionLog struct {
	ID        uuid.UUID       `json:"id"`
	LeadID    uuid.UUID       `json:"leadId"`
	ClinicID  *uuid.UUID      `json:"clinicId,omitempty"`
	City      string          `json:"city"`
	Service   string          `json:"service"`
	Assigned  bool            `json:"assigned"`
	Reason    domain.Reason   `json:"reason"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ListLogsParams filters the audit log. Zero values mean "no filter".
type ListLogsParams struct {
	City     string
	Service  string
	ClinicID *uuid.UUID
	Reason   domain.Reason
	Assigned *bool
	Page     int
	PageSize int
}

// AssignmentRecord is an assignment joined with its lead for admin listings.
type AssignmentRecord struct {
	ID         uuid.UUID `json:"id"`
	LeadID     uuid.UUID `json:"leadId"`
	ClinicID   uuid.UUID `json:"clinicId"`
	ClinicName string    `json:"clinicName"`
	City       string    `json:"city"`
	Service    string    `json:"service"`
	FullName   string    `json:"fullName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListAssignmentsParams filters admin assignment listings.
type ListAssignmentsParams struct {
	ClinicID *uuid.UUID
	Page     int
	PageSize int
}

// UpdateStatusParams changes a lead's workflow status from the clinic panel.
type UpdateStatusParams struct {
	ClinicID uuid.UUID
	LeadID   uuid.UUID
	Status   string
	Note     *string
}

// Repository is the persistence port of the leads module.
type Repository interface {
	// Distribute runs the full distribution transaction: persist the lead,
	// select a winner, consume quota, and write the audit row. The lead is
	// inserted even when no clinic can be assigned.
	Distribute(ctx context.Context, params DistributeParams) (DistributeResult, error)

	// ListByClinic returns the leads assigned to a clinic, newest first,
	// with the total count for pagination.
	ListByClinic(ctx context.Context, clinicID uuid.UUID, page, pageSize int) ([]Lead, int, error)

	// GetForClinic returns one lead, scoped to the clinic it is assigned to.
	GetForClinic(ctx context.Context, clinicID, leadID uuid.UUID) (Lead, error)

	// UpdateStatus moves an assigned lead through its workflow. Only the
	// assigned clinic may change status.
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (Lead, error)

	// ListDistributionLogs reads the append-only audit log with filters.
	ListDistributionLogs(ctx context.Context, params ListLogsParams) ([]DistributionLog, int, error)

	// ListAssignments lists lead assignments for admin review.
	ListAssignments(ctx context.Context, params ListAssignmentsParams) ([]AssignmentRecord, int, error)
}
