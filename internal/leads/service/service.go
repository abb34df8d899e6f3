// Package service orchestrates lead intake and distribution: guard checks,
// input normalization, the distribution transaction, and domain events.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dentallead_backend/internal/events"
	"dentallead_backend/internal/leads/intake"
	"dentallead_backend/internal/leads/repository"
	"dentallead_backend/platform/apperr"
	"dentallead_backend/platform/config"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/phone"
	"dentallead_backend/platform/sanitize"
	"dentallead_backend/platform/validator"

	"dentallead_backend/internal/leads/transport"
)

// Service implements the leads module use cases.
type Service struct {
	repo      repository.Repository
	guard     *intake.Guard
	bus       events.Bus
	validator *validator.Validator
	cfg       config.IntakeConfig
	log       *logger.Logger
}

// New creates the leads service.
func New(repo repository.Repository, guard *intake.Guard, bus events.Bus, val *validator.Validator, cfg config.IntakeConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, bus: bus, validator: val, cfg: cfg, log: log}
}

// SubmitMeta carries request metadata recorded with the lead.
type SubmitMeta struct {
	IP        string
	UserAgent string
}

// SubmitResult is the outcome of a public submission that was not rejected.
type SubmitResult struct {
	// Spam means the honeypot fired; nothing was persisted and the other
	// fields are zero.
	Spam     bool
	LeadID   uuid.UUID
	Assigned bool
	ClinicID *uuid.UUID
}

// Submit runs the full intake pipeline: honeypot, consent gate, rate limit,
// validation, normalization, and the distribution transaction. Rejections
// surface as typed errors carrying the stable response code.
func (s *Service) Submit(ctx context.Context, req transport.CreateLeadRequest, meta SubmitMeta) (SubmitResult, error) {
	decision, err := s.guard.Check(ctx, intake.Submission{
		Honeypot: req.Website,
		Consent:  req.Consent,
		CallerIP: meta.IP,
	})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("intake guard: %w", err)
	}

	switch decision.Verdict {
	case intake.VerdictSpam:
		return SubmitResult{Spam: true}, nil
	case intake.VerdictConsentMissing:
		return SubmitResult{}, apperr.BadRequest("explicit consent is required").WithCode("CONSENT_REQUIRED")
	case intake.VerdictRateLimited:
		retryAfterSec := int(decision.RetryAfter / time.Second)
		if retryAfterSec < 1 {
			retryAfterSec = 1
		}
		s.log.RateLimitExceeded(meta.IP, "/public/leads")
		return SubmitResult{}, apperr.TooManyRequests("too many submissions, slow down").
			WithCode("RATE_LIMIT").
			WithDetails(map[string]int{"retryAfterSec": retryAfterSec})
	}

	if err := s.validator.Struct(req); err != nil {
		return SubmitResult{}, apperr.Validation("invalid lead payload").
			WithCode("VALIDATION_ERROR").
			WithDetails(validator.Issues(err))
	}

	params := s.normalize(req, meta)

	result, err := s.repo.Distribute(ctx, params)
	if err != nil {
		s.log.DatabaseError("distribute lead", err)
		return SubmitResult{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err).WithCode("LEAD_CREATE_ERROR")
	}

	s.log.DistributionDecision(result.LeadID.String(), params.City, params.Service, result.Assigned, string(result.Reason))
	s.publishOutcome(ctx, params, result)

	return SubmitResult{
		LeadID:   result.LeadID,
		Assigned: result.Assigned,
		ClinicID: result.ClinicID,
	}, nil
}

// normalize lower-cases the routing pair, normalizes the phone number to
// E.164, strips markup from free text, and folds the preferred-time field
// into the message.
func (s *Service) normalize(req transport.CreateLeadRequest, meta SubmitMeta) repository.DistributeParams {
	message := sanitize.TextPtr(req.Message)
	if req.When != nil && strings.TrimSpace(*req.When) != "" {
		when := "Preferred time: " + sanitize.Text(*req.When)
		if message != nil && *message != "" {
			combined := *message + "\n" + when
			message = &combined
		} else {
			message = &when
		}
	}

	intent := req.Intent
	if intent == "" {
		intent = "offer"
	}
	source := req.Source
	if source == "" {
		source = "web"
	}

	var email *string
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		email = &normalized
	}

	consentVersion := s.cfg.GetConsentTextVersion()
	if req.ConsentTextVersion != nil && strings.TrimSpace(*req.ConsentTextVersion) != "" {
		consentVersion = sanitize.Text(*req.ConsentTextVersion)
	}

	return repository.DistributeParams{
		City:               strings.ToLower(strings.TrimSpace(req.City)),
		Service:            strings.ToLower(strings.TrimSpace(req.Service)),
		FullName:           sanitize.Text(req.FullName),
		Phone:              phone.NormalizeE164(req.Phone),
		Email:              email,
		Message:            message,
		Intent:             intent,
		Source:             sanitize.Text(source),
		ConsentAt:          time.Now().UTC(),
		ConsentTextVersion: consentVersion,
		IP:                 meta.IP,
		UserAgent:          meta.UserAgent,
	}
}

func (s *Service) publishOutcome(ctx context.Context, params repository.DistributeParams, result repository.DistributeResult) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(ctx, events.LeadSubmitted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    result.LeadID,
		City:      params.City,
		Service:   params.Service,
		Assigned:  result.Assigned,
		ClinicID:  result.ClinicID,
		Reason:    string(result.Reason),
	})

	if result.Assigned && result.ClinicID != nil && result.SubscriptionID != nil {
		s.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent:      events.NewBaseEvent(),
			LeadID:         result.LeadID,
			ClinicID:       *result.ClinicID,
			SubscriptionID: *result.SubscriptionID,
			City:           params.City,
			Service:        params.Service,
			ConsumerName:   params.FullName,
			ConsumerPhone:  params.Phone,
			QuotaRemaining: result.QuotaRemaining,
		})
	}
}

// ListForClinic returns the clinic's assigned leads.
func (s *Service) ListForClinic(ctx context.Context, clinicID uuid.UUID, page, pageSize int) ([]repository.Lead, int, error) {
	return s.repo.ListByClinic(ctx, clinicID, page, pageSize)
}

// GetForClinic returns one of the clinic's assigned leads.
func (s *Service) GetForClinic(ctx context.Context, clinicID, leadID uuid.UUID) (repository.Lead, error) {
	return s.repo.GetForClinic(ctx, clinicID, leadID)
}

// UpdateStatus moves an assigned lead through its workflow.
func (s *Service) UpdateStatus(ctx context.Context, clinicID, leadID uuid.UUID, req transport.UpdateLeadStatusRequest) (repository.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return repository.Lead{}, apperr.Validation("invalid status update").
			WithCode("VALIDATION_ERROR").
			WithDetails(validator.Issues(err))
	}

	return s.repo.UpdateStatus(ctx, repository.UpdateStatusParams{
		ClinicID: clinicID,
		LeadID:   leadID,
		Status:   req.Status,
		Note:     sanitize.TextPtr(req.Note),
	})
}

// ListDistributionLogs reads the audit log for admins.
func (s *Service) ListDistributionLogs(ctx context.Context, params repository.ListLogsParams) ([]repository.DistributionLog, int, error) {
	if params.Reason != "" && !params.Reason.Valid() {
		return nil, 0, apperr.Validation("unknown reason filter").WithCode("VALIDATION_ERROR")
	}
	return s.repo.ListDistributionLogs(ctx, params)
}

// ListAssignments lists lead assignments for admins.
func (s *Service) ListAssignments(ctx context.Context, params repository.ListAssignmentsParams) ([]repository.AssignmentRecord, int, error) {
	return s.repo.ListAssignments(ctx, params)
}
