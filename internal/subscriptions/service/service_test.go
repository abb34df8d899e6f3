package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"dentallead_backend/internal/subscriptions/repository"
	"dentallead_backend/internal/subscriptions/transport"
	"dentallead_backend/platform/apperr"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/validator"
)

type fakeRepo struct {
	repository.Repository

	topUpParams repository.TopUpParams
	topUpResult repository.Subscription
	topUpNew    bool

	sweepCount int64
}

func (f *fakeRepo) TopUp(_ context.Context, params repository.TopUpParams) (repository.Subscription, bool, error) {
	f.topUpParams = params
	return f.topUpResult, f.topUpNew, nil
}

func (f *fakeRepo) ExpireSweep(_ context.Context, _ time.Time) (int64, error) {
	return f.sweepCount, nil
}

func newTestService(repo *fakeRepo) *Service {
	return New(repo, nil, validator.New(), logger.New("test"))
}

func TestTopUpDefaultsExtension(t *testing.T) {
	clinicID := uuid.New()
	repo := &fakeRepo{topUpResult: repository.Subscription{ID: uuid.New(), ClinicID: clinicID, QuotaTotal: 15}}
	svc := newTestService(repo)

	_, _, err := svc.TopUp(context.Background(), transport.TopUpRequest{ClinicID: clinicID, QuotaAdd: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.topUpParams.ExtendDays != defaultExtendDays {
		t.Fatalf("expected default extension of %d days, got %d", defaultExtendDays, repo.topUpParams.ExtendDays)
	}
	if repo.topUpParams.QuotaAdd != 10 {
		t.Fatalf("expected quota add 10, got %d", repo.topUpParams.QuotaAdd)
	}
}

func TestTopUpExplicitZeroKeepsExpiry(t *testing.T) {
	clinicID := uuid.New()
	repo := &fakeRepo{topUpResult: repository.Subscription{ID: uuid.New(), ClinicID: clinicID, QuotaTotal: 15}}
	svc := newTestService(repo)

	zero := 0
	_, _, err := svc.TopUp(context.Background(), transport.TopUpRequest{ClinicID: clinicID, QuotaAdd: 10, ExtendDays: &zero})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.topUpParams.ExtendDays != 0 {
		t.Fatalf("expected no extension, got %d days", repo.topUpParams.ExtendDays)
	}
}

func TestTopUpRejectsNonPositiveQuota(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, _, err := svc.TopUp(context.Background(), transport.TopUpRequest{ClinicID: uuid.New(), QuotaAdd: 0})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", appErr.Code)
	}
}

func TestCreateRejectsPastExpiry(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.Create(context.Background(), transport.CreateSubscriptionRequest{
		ClinicID:   uuid.New(),
		QuotaTotal: 10,
		ExpiresAt:  time.Now().Add(-time.Hour),
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", appErr.Code)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, _, err := svc.List(context.Background(), repository.ListParams{Status: "paused"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", appErr.Code)
	}
}

func TestExpireSweepReportsCount(t *testing.T) {
	repo := &fakeRepo{sweepCount: 3}
	svc := newTestService(repo)

	swept, err := svc.ExpireSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swept != 3 {
		t.Fatalf("expected 3 swept, got %d", swept)
	}
}

func TestQuotaRemainingNeverNegative(t *testing.T) {
	s := repository.Subscription{QuotaTotal: 5, QuotaUsed: 7}
	if got := s.QuotaRemaining(); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
