package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Subscription is one quota grant: a block of leads a clinic has paid for,
// valid until expires_at.
type Subscription struct {
	ID         uuid.UUID `json:"id"`
	ClinicID   uuid.UUID `json:"clinicId"`
	QuotaTotal int       `json:"quotaTotal"`
	QuotaUsed  int       `json:"quotaUsed"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// QuotaRemaining returns the unspent part of the grant.
func (s Subscription) QuotaRemaining() int {
	if s.QuotaUsed >= s.QuotaTotal {
		return 0
	}
	return s.QuotaTotal - s.QuotaUsed
}

// Subscription statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusCanceled = "canceled"
)

// CreateParams creates a fresh grant for a clinic.
type CreateParams struct {
	ClinicID   uuid.UUID
	QuotaTotal int
	ExpiresAt  time.Time
}

// TopUpParams adds quota to a clinic's current grant, creating one when no
// active grant exists.
type TopUpParams struct {
	ClinicID   uuid.UUID
	QuotaAdd   int
	ExtendDays int
}

// ListParams filters subscription listings.
type ListParams struct {
	ClinicID *uuid.UUID
	Status   string
	Page     int
	PageSize int
}

// ExpiringGrant is a grant close to its expiry, joined with clinic contact
// details for the reminder email.
type ExpiringGrant struct {
	SubscriptionID uuid.UUID
	ClinicID       uuid.UUID
	ClinicName     string
	ClinicEmail    string
	QuotaRemaining int
	ExpiresAt      time.Time
}

// Repository is the persistence port of the subscriptions module. Quota
// consumption is deliberately absent: the only place quota_used moves up is
// the distribution transaction in the leads module.
type Repository interface {
	// List returns grants with optional clinic and status filters.
	List(ctx context.Context, params ListParams) ([]Subscription, int, error)

	// Create inserts a fresh active grant.
	Create(ctx context.Context, params CreateParams) (Subscription, error)

	// CurrentGrant returns the clinic's most recent active, non-expired
	// grant. This is the single definition of "current" used everywhere.
	CurrentGrant(ctx context.Context, clinicID uuid.UUID) (Subscription, error)

	// TopUp raises quota_total on the current grant and pushes expires_at
	// out when the extension lands later. Creates a grant when none is
	// active. Returns the resulting grant and whether it was created.
	TopUp(ctx context.Context, params TopUpParams) (Subscription, bool, error)

	// ExpireSweep marks active grants whose expires_at has passed as
	// inactive. Returns the number of grants swept.
	ExpireSweep(ctx context.Context, now time.Time) (int64, error)

	// ExpiringWithin returns active grants expiring inside the horizon,
	// for reminder notifications.
	ExpiringWithin(ctx context.Context, now time.Time, horizon time.Duration) ([]ExpiringGrant, error)
}
