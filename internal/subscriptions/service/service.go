// Package service implements the quota ledger use cases: grant creation,
// top-ups, the clinic's current-grant view, and expiry maintenance.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dentallead_backend/internal/events"
	"dentallead_backend/internal/subscriptions/repository"
	"dentallead_backend/internal/subscriptions/transport"
	"dentallead_backend/platform/apperr"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/validator"
)

// defaultExtendDays is applied when a top-up does not name an extension.
const defaultExtendDays = 30

// Service implements the subscriptions module use cases.
type Service struct {
	repo      repository.Repository
	bus       events.Bus
	validator *validator.Validator
	log       *logger.Logger
}

// New creates the subscriptions service.
func New(repo repository.Repository, bus events.Bus, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, validator: val, log: log}
}

// List returns grants for the admin view.
func (s *Service) List(ctx context.Context, params repository.ListParams) ([]repository.Subscription, int, error) {
	if params.Status != "" {
		switch params.Status {
		case repository.StatusActive, repository.StatusInactive, repository.StatusCanceled:
		default:
			return nil, 0, apperr.Validation("unknown status filter").WithCode("VALIDATION_ERROR")
		}
	}
	return s.repo.List(ctx, params)
}

// Create inserts a fresh active grant.
func (s *Service) Create(ctx context.Context, req transport.CreateSubscriptionRequest) (repository.Subscription, error) {
	if err := s.validator.Struct(req); err != nil {
		return repository.Subscription{}, apperr.Validation("invalid subscription payload").
			WithCode("VALIDATION_ERROR").
			WithDetails(validator.Issues(err))
	}
	if !req.ExpiresAt.After(time.Now()) {
		return repository.Subscription{}, apperr.Validation("expiry must be in the future").WithCode("VALIDATION_ERROR")
	}

	return s.repo.Create(ctx, repository.CreateParams{
		ClinicID:   req.ClinicID,
		QuotaTotal: req.QuotaTotal,
		ExpiresAt:  req.ExpiresAt,
	})
}

// TopUp adds quota to the clinic's current grant, creating one when none is
// active, and publishes the ledger event.
func (s *Service) TopUp(ctx context.Context, req transport.TopUpRequest) (repository.Subscription, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return repository.Subscription{}, false, apperr.Validation("invalid top-up payload").
			WithCode("VALIDATION_ERROR").
			WithDetails(validator.Issues(err))
	}

	extendDays := defaultExtendDays
	if req.ExtendDays != nil {
		extendDays = *req.ExtendDays
	}

	sub, created, err := s.repo.TopUp(ctx, repository.TopUpParams{
		ClinicID:   req.ClinicID,
		QuotaAdd:   req.QuotaAdd,
		ExtendDays: extendDays,
	})
	if err != nil {
		return repository.Subscription{}, false, fmt.Errorf("top up quota: %w", err)
	}

	s.log.Info("quota topped up",
		"clinic_id", sub.ClinicID,
		"subscription_id", sub.ID,
		"quota_add", req.QuotaAdd,
		"created", created,
	)

	if s.bus != nil {
		s.bus.Publish(ctx, events.QuotaToppedUp{
			BaseEvent:      events.NewBaseEvent(),
			ClinicID:       sub.ClinicID,
			SubscriptionID: sub.ID,
			QuotaAdded:     req.QuotaAdd,
			QuotaTotal:     sub.QuotaTotal,
			ExpiresAt:      sub.ExpiresAt,
		})
	}

	return sub, created, nil
}

// CurrentGrant returns the clinic's current quota grant for the panel.
func (s *Service) CurrentGrant(ctx context.Context, clinicID uuid.UUID) (repository.Subscription, error) {
	return s.repo.CurrentGrant(ctx, clinicID)
}

// ExpireSweep marks overdue grants inactive. Called by the maintenance worker.
func (s *Service) ExpireSweep(ctx context.Context) (int64, error) {
	swept, err := s.repo.ExpireSweep(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.log.Info("expired subscriptions swept", "count", swept)
	}
	return swept, nil
}

// ExpiringWithin returns grants ending inside the horizon and publishes an
// expiring event per grant so notification can act on them.
func (s *Service) ExpiringWithin(ctx context.Context, horizon time.Duration) ([]repository.ExpiringGrant, error) {
	grants, err := s.repo.ExpiringWithin(ctx, time.Now().UTC(), horizon)
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		for _, g := range grants {
			s.bus.Publish(ctx, events.SubscriptionExpiring{
				BaseEvent:      events.NewBaseEvent(),
				ClinicID:       g.ClinicID,
				SubscriptionID: g.SubscriptionID,
				ExpiresAt:      g.ExpiresAt,
			})
		}
	}

	return grants, nil
}
