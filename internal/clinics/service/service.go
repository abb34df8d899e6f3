// Package service implements clinic and coverage management.
package service

import (
	"context"

	"github.com/google/uuid"

	"dentallead_backend/internal/clinics/repository"
	"dentallead_backend/internal/clinics/transport"
	"dentallead_backend/platform/apperr"
	"dentallead_backend/platform/validator"
)

// Service implements the clinics module use cases.
type Service struct {
	repo      repository.Repository
	validator *validator.Validator
}

// New creates the clinics service.
func New(repo repository.Repository, val *validator.Validator) *Service {
	return &Service{repo: repo, validator: val}
}

// CreateClinic registers a clinic.
func (s *Service) CreateClinic(ctx context.Context, req transport.CreateClinicRequest) (repository.Clinic, error) {
	if err := s.validator.Struct(req); err != nil {
		return repository.Clinic{}, apperr.Validation("invalid clinic payload").
			WithCode("VALIDATION_ERROR").
			WithDetails(validator.Issues(err))
	}

	return s.repo.CreateClinic(ctx, repository.CreateClinicParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		City:  req.City,
	})
}

// GetClinic returns one clinic.
func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (repository.Clinic, error) {
	return s.repo.GetClinic(ctx, id)
}

// ListClinics returns clinics for the admin view.
func (s *Service) ListClinics(ctx context.Context, page, pageSize int) ([]repository.Clinic, int, error) {
	return s.repo.ListClinics(ctx, page, pageSize)
}

// UpdateClinic patches a clinic.
func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, req transport.UpdateClinicRequest) (repository.Clinic, error) {
	if err := s.validator.Struct(req); err != nil {
		return repository.Clinic{}, apperr.Validation("invalid clinic payload").
			WithCode("VALIDATION_ERROR").
			WithDetails(validator.Issues(err))
	}

	return s.repo.UpdateClinic(ctx, id, repository.UpdateClinicParams{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		City:     req.City,
		IsActive: req.IsActive,
	})
}

// CreateCoverage declares a coverage pair for a clinic.
func (s *Service) CreateCoverage(ctx context.Context, clinicID uuid.UUID, req transport.CreateCoverageRequest) (repository.Coverage, error) {
	if err := s.validator.Struct(req); err != nil {
		return repository.Coverage{}, apperr.Validation("invalid coverage payload").
			WithCode("VALIDATION_ERROR").
			WithDetails(validator.Issues(err))
	}

	if _, err := s.repo.GetClinic(ctx, clinicID); err != nil {
		return repository.Coverage{}, err
	}

	return s.repo.CreateCoverage(ctx, repository.CreateCoverageParams{
		ClinicID: clinicID,
		City:     req.City,
		Service:  req.Service,
	})
}

// ListCoverages returns a clinic's coverage pairs.
func (s *Service) ListCoverages(ctx context.Context, clinicID uuid.UUID) ([]repository.Coverage, error) {
	return s.repo.ListCoverages(ctx, clinicID)
}

// ToggleCoverage activates or deactivates a coverage pair.
func (s *Service) ToggleCoverage(ctx context.Context, clinicID, coverageID uuid.UUID, active bool) (repository.Coverage, error) {
	return s.repo.SetCoverageActive(ctx, clinicID, coverageID, active)
}

// DeleteCoverage removes a coverage pair.
func (s *Service) DeleteCoverage(ctx context.Context, clinicID, coverageID uuid.UUID) error {
	return s.repo.DeleteCoverage(ctx, clinicID, coverageID)
}

// GetContact returns the notification contact for a clinic.
func (s *Service) GetContact(ctx context.Context, id uuid.UUID) (repository.Contact, error) {
	return s.repo.GetContact(ctx, id)
}
