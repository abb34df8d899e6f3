// Package transport defines request/response DTOs for the leads module.
package transport

import (
	"github.com/google/uuid"

	"dentallead_backend/internal/leads/repository"
)

// CreateLeadRequest is the public intake payload. Website is a honeypot:
// hidden in the form, so any non-empty value marks the submission as spam.
type CreateLeadRequest struct {
	City     string  `json:"city" validate:"required,min=2,max=100"`
	Service  string  `json:"service" validate:"required,min=2,max=100"`
	FullName string  `json:"fullName" validate:"required,min=2,max=150"`
	Phone    string  `json:"phone" validate:"required,min=7,max=32"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Message  *string `json:"message" validate:"omitempty,max=2000"`
	When     *string `json:"when" validate:"omitempty,max=200"`
	Intent   string  `json:"intent" validate:"omitempty,oneof=offer appointment info"`
	Source   string  `json:"source" validate:"omitempty,max=50"`
	Consent  bool    `json:"consent"`
	// ConsentTextVersion is the consent text the client showed; the
	// configured version is recorded when absent.
	ConsentTextVersion *string `json:"consentTextVersion" validate:"omitempty,max=50"`
	Website            string  `json:"website"`
}

// LeadSubmittedResponse is the 201 body for a persisted submission.
type LeadSubmittedResponse struct {
	OK       bool       `json:"ok"`
	Assigned bool       `json:"assigned"`
	LeadID   uuid.UUID  `json:"leadId"`
	ClinicID *uuid.UUID `json:"clinicId,omitempty"`
}

// SpamAcceptedResponse is the success-shaped body returned to honeypot hits.
type SpamAcceptedResponse struct {
	OK   bool `json:"ok"`
	Spam bool `json:"spam"`
}

// RateLimitedResponse is the 429 body with the wait hint in seconds.
type RateLimitedResponse struct {
	OK            bool   `json:"ok"`
	Code          string `json:"code"`
	RetryAfterSec int    `json:"retryAfterSec"`
}

// UpdateLeadStatusRequest moves a lead through its workflow from the panel.
type UpdateLeadStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=new contacted won lost"`
	Note   *string `json:"note" validate:"omitempty,max=2000"`
}

// LeadResponse wraps a single lead.
type LeadResponse struct {
	OK   bool            `json:"ok"`
	Data repository.Lead `json:"data"`
}

// LeadListResponse wraps a paginated lead listing.
type LeadListResponse struct {
	OK       bool              `json:"ok"`
	Data     []repository.Lead `json:"data"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// DistributionLogListResponse wraps a paginated audit log listing.
type DistributionLogListResponse struct {
	OK       bool                         `json:"ok"`
	Data     []repository.DistributionLog `json:"data"`
	Total    int                          `json:"total"`
	Page     int                          `json:"page"`
	PageSize int                          `json:"pageSize"`
}

// AssignmentListResponse wraps a paginated assignment listing.
type AssignmentListResponse struct {
	OK       bool                          `json:"ok"`
	Data     []repository.AssignmentRecord `json:"data"`
	Total    int                           `json:"total"`
	Page     int                           `json:"page"`
	PageSize int                           `json:"pageSize"`
}
