package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clinic is a practice that receives leads.
type Clinic struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	City           string     `json:"city"`
	IsActive       bool       `json:"isActive"`
	LastAssignedAt *time.Time `json:"lastAssignedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Coverage declares that a clinic wants leads for a (city, service) pair.
type Coverage struct {
	ID        uuid.UUID `json:"id"`
	ClinicID  uuid.UUID `json:"clinicId"`
	City      string    `json:"city"`
	Service   string    `json:"service"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateClinicParams creates a clinic.
type CreateClinicParams struct {
	Name  string
	Email string
	Phone *string
	City  string
}

// UpdateClinicParams patches a clinic. Nil fields are left unchanged.
type UpdateClinicParams struct {
	Name     *string
	Email    *string
	Phone    *string
	City     *string
	IsActive *bool
}

// CreateCoverageParams declares a coverage pair for a clinic.
type CreateCoverageParams struct {
	ClinicID uuid.UUID
	City     string
	Service  string
}

// Contact is the slice of a clinic the notification module needs.
type Contact struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Repository is the persistence port of the clinics module.
type Repository interface {
	CreateClinic(ctx context.Context, params CreateClinicParams) (Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (Clinic, error)
	ListClinics(ctx context.Context, page, pageSize int) ([]Clinic, int, error)
	UpdateClinic(ctx context.Context, id uuid.UUID, params UpdateClinicParams) (Clinic, error)

	CreateCoverage(ctx context.Context, params CreateCoverageParams) (Coverage, error)
	ListCoverages(ctx context.Context, clinicID uuid.UUID) ([]Coverage, error)
	SetCoverageActive(ctx context.Context, clinicID, coverageID uuid.UUID, active bool) (Coverage, error)
	DeleteCoverage(ctx context.Context, clinicID, coverageID uuid.UUID) error

	// GetContact returns the contact details used for notifications.
	GetContact(ctx context.Context, id uuid.UUID) (Contact, error)
}
