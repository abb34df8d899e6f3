// Package transport defines request/response DTOs for the clinics module.
package transport

import (
	"dentallead_backend/internal/clinics/repository"
)

// CreateClinicRequest registers a clinic.
type CreateClinicRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=150"`
	Email string  `json:"email" validate:"required,email,max=254"`
	Phone *string `json:"phone" validate:"omitempty,min=7,max=32"`
	City  string  `json:"city" validate:"required,min=2,max=100"`
}

// UpdateClinicRequest patches a clinic. Absent fields are left unchanged.
type UpdateClinicRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=150"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Phone    *string `json:"phone" validate:"omitempty,min=7,max=32"`
	City     *string `json:"city" validate:"omitempty,min=2,max=100"`
	IsActive *bool   `json:"isActive"`
}

// CreateCoverageRequest declares a (city, service) pair.
type CreateCoverageRequest struct {
	City    string `json:"city" validate:"required,min=2,max=100"`
	Service string `json:"service" validate:"required,min=2,max=100"`
}

// ToggleCoverageRequest activates or deactivates a coverage pair.
type ToggleCoverageRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// ClinicResponse wraps a single clinic.
type ClinicResponse struct {
	OK   bool              `json:"ok"`
	Data repository.Clinic `json:"data"`
}

// ClinicListResponse wraps a paginated clinic listing.
type ClinicListResponse struct {
	OK       bool                `json:"ok"`
	Data     []repository.Clinic `json:"data"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

// CoverageResponse wraps a single coverage pair.
type CoverageResponse struct {
	OK   bool                `json:"ok"`
	Data repository.Coverage `json:"data"`
}

// CoverageListResponse wraps a clinic's coverage pairs.
type CoverageListResponse struct {
	OK   bool                  `json:"ok"`
	Data []repository.Coverage `json:"data"`
}
