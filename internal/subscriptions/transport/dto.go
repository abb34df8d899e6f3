// Package transport defines request/response DTOs for the subscriptions module.
package transport

import (
	"time"

	"github.com/google/uuid"

	"dentallead_backend/internal/subscriptions/repository"
)

// CreateSubscriptionRequest creates a fresh grant for a clinic.
type CreateSubscriptionRequest struct {
	ClinicID   uuid.UUID `json:"clinicId" validate:"required"`
	QuotaTotal int       `json:"quotaTotal" validate:"required,min=1,max=10000"`
	ExpiresAt  time.Time `json:"expiresAt" validate:"required"`
}

// TopUpRequest is the external payment/admin collaborator payload: add
// quota to the clinic's current grant and optionally extend it. A nil
// ExtendDays applies the default extension; an explicit zero keeps the
// current expiry.
type TopUpRequest struct {
	ClinicID   uuid.UUID `json:"clinicId" validate:"required"`
	QuotaAdd   int       `json:"quotaAdd" validate:"required,min=1,max=10000"`
	ExtendDays *int      `json:"extendDays" validate:"omitempty,min=0,max=365"`
}

// SubscriptionResponse wraps a single grant.
type SubscriptionResponse struct {
	OK   bool                    `json:"ok"`
	Data repository.Subscription `json:"data"`
}

// TopUpResponse reports the grant after the top-up and whether a fresh one
// had to be created.
type TopUpResponse struct {
	OK      bool                    `json:"ok"`
	Created bool                    `json:"created"`
	Data    repository.Subscription `json:"data"`
}

// CurrentGrantResponse is the clinic panel view of its quota.
type CurrentGrantResponse struct {
	OK             bool                    `json:"ok"`
	Data           repository.Subscription `json:"data"`
	QuotaRemaining int                     `json:"quotaRemaining"`
}

// SubscriptionListResponse wraps a paginated grant listing.
type SubscriptionListResponse struct {
	OK       bool                      `json:"ok"`
	Data     []repository.Subscription `json:"data"`
	Total    int                       `json:"total"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"pageSize"`
}
