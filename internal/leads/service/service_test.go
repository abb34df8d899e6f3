package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"dentallead_backend/internal/leads/domain"
	"dentallead_backend/internal/leads/intake"
	"dentallead_backend/internal/leads/repository"
	"dentallead_backend/internal/leads/transport"
	"dentallead_backend/platform/apperr"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/ratelimit"
	"dentallead_backend/platform/validator"
)

type fakeRepo struct {
	repository.Repository

	distributeCalls  int
	lastParams       repository.DistributeParams
	distributeResult repository.DistributeResult
	distributeErr    error
}

func (f *fakeRepo) Distribute(_ context.Context, params repository.DistributeParams) (repository.DistributeResult, error) {
	f.distributeCalls++
	f.lastParams = params
	if f.distributeErr != nil {
		return repository.DistributeResult{}, f.distributeErr
	}
	return f.distributeResult, nil
}

type intakeConfig struct{}

func (intakeConfig) GetLeadRateLimitWindow() time.Duration { return time.Minute }
func (intakeConfig) GetLeadRateLimitMax() int              { return 5 }
func (intakeConfig) GetConsentTextVersion() string         { return "v1" }

func newTestService(repo *fakeRepo, maxHits int) *Service {
	limiter := ratelimit.NewSlidingWindow(time.Minute, maxHits)
	guard := intake.NewGuard(limiter)
	return New(repo, guard, nil, validator.New(), intakeConfig{}, logger.New("test"))
}

func validRequest() transport.CreateLeadRequest {
	return transport.CreateLeadRequest{
		City:     "Istanbul",
		Service:  "Implant",
		FullName: "Ayşe Yılmaz",
		Phone:    "+905321234567",
		Consent:  true,
	}
}

func meta() SubmitMeta {
	return SubmitMeta{IP: "203.0.113.9", UserAgent: "test-agent"}
}

func TestSubmitAssignsLead(t *testing.T) {
	leadID := uuid.New()
	clinicID := uuid.New()
	subID := uuid.New()
	repo := &fakeRepo{distributeResult: repository.DistributeResult{
		LeadID:         leadID,
		Assigned:       true,
		Reason:         domain.ReasonAssigned,
		ClinicID:       &clinicID,
		SubscriptionID: &subID,
		QuotaRemaining: 4,
	}}
	svc := newTestService(repo, 5)

	res, err := svc.Submit(context.Background(), validRequest(), meta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Spam {
		t.Fatal("clean submission flagged as spam")
	}
	if !res.Assigned || res.LeadID != leadID {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ClinicID == nil || *res.ClinicID != clinicID {
		t.Fatalf("expected clinic %s, got %v", clinicID, res.ClinicID)
	}
	if repo.distributeCalls != 1 {
		t.Fatalf("expected one distribution, got %d", repo.distributeCalls)
	}
}

func TestSubmitNormalizesRoutingPair(t *testing.T) {
	repo := &fakeRepo{distributeResult: repository.DistributeResult{LeadID: uuid.New(), Reason: domain.ReasonNoCandidateClinic}}
	svc := newTestService(repo, 5)

	req := validRequest()
	req.City = "  Istanbul  "
	req.Service = "IMPLANT"

	if _, err := svc.Submit(context.Background(), req, meta()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastParams.City != "istanbul" {
		t.Fatalf("city not normalized: %q", repo.lastParams.City)
	}
	if repo.lastParams.Service != "implant" {
		t.Fatalf("service not normalized: %q", repo.lastParams.Service)
	}
	if repo.lastParams.ConsentTextVersion != "v1" {
		t.Fatalf("consent text version not recorded: %q", repo.lastParams.ConsentTextVersion)
	}
	if repo.lastParams.ConsentAt.IsZero() {
		t.Fatal("consent timestamp not recorded")
	}
}

func TestSubmitRecordsClientConsentTextVersion(t *testing.T) {
	repo := &fakeRepo{distributeResult: repository.DistributeResult{LeadID: uuid.New(), Reason: domain.ReasonNoCandidateClinic}}
	svc := newTestService(repo, 5)

	req := validRequest()
	version := "v2"
	req.ConsentTextVersion = &version

	if _, err := svc.Submit(context.Background(), req, meta()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastParams.ConsentTextVersion != "v2" {
		t.Fatalf("expected client consent version, got %q", repo.lastParams.ConsentTextVersion)
	}

	if _, err := svc.Submit(context.Background(), validRequest(), meta()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastParams.ConsentTextVersion != "v1" {
		t.Fatalf("expected configured consent version, got %q", repo.lastParams.ConsentTextVersion)
	}
}

func TestSubmitFoldsPreferredTimeIntoMessage(t *testing.T) {
	repo := &fakeRepo{distributeResult: repository.DistributeResult{LeadID: uuid.New(), Reason: domain.ReasonNoCandidateClinic}}
	svc := newTestService(repo, 5)

	req := validRequest()
	msg := "I need a consultation"
	when := "next week"
	req.Message = &msg
	req.When = &when

	if _, err := svc.Submit(context.Background(), req, meta()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastParams.Message == nil {
		t.Fatal("message dropped")
	}
	want := "I need a consultation\nPreferred time: next week"
	if *repo.lastParams.Message != want {
		t.Fatalf("message = %q, want %q", *repo.lastParams.Message, want)
	}
}

func TestSubmitHoneypotPersistsNothing(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, 5)

	req := validRequest()
	req.Website = "https://spam.example"

	res, err := svc.Submit(context.Background(), req, meta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Spam {
		t.Fatal("honeypot submission not flagged as spam")
	}
	if repo.distributeCalls != 0 {
		t.Fatalf("spam submission reached the repository %d times", repo.distributeCalls)
	}
}

func TestSubmitWithoutConsentPersistsNothing(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, 5)

	req := validRequest()
	req.Consent = false

	_, err := svc.Submit(context.Background(), req, meta())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != "CONSENT_REQUIRED" {
		t.Fatalf("expected CONSENT_REQUIRED, got %q", appErr.Code)
	}
	if repo.distributeCalls != 0 {
		t.Fatal("consent-less submission reached the repository")
	}
}

func TestSubmitRateLimitsSixthCall(t *testing.T) {
	repo := &fakeRepo{distributeResult: repository.DistributeResult{LeadID: uuid.New(), Reason: domain.ReasonNoCandidateClinic}}
	svc := newTestService(repo, 5)

	for i := 0; i < 5; i++ {
		if _, err := svc.Submit(context.Background(), validRequest(), meta()); err != nil {
			t.Fatalf("submission %d: unexpected error: %v", i+1, err)
		}
	}

	_, err := svc.Submit(context.Background(), validRequest(), meta())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != "RATE_LIMIT" {
		t.Fatalf("expected RATE_LIMIT, got %q", appErr.Code)
	}
	details, ok := appErr.Details.(map[string]int)
	if !ok || details["retryAfterSec"] < 1 {
		t.Fatalf("expected retryAfterSec of at least 1, got %v", appErr.Details)
	}
	if repo.distributeCalls != 5 {
		t.Fatalf("expected 5 persisted submissions, got %d", repo.distributeCalls)
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, 5)

	req := validRequest()
	req.Phone = "123"

	_, err := svc.Submit(context.Background(), req, meta())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", appErr.Code)
	}
	if repo.distributeCalls != 0 {
		t.Fatal("invalid submission reached the repository")
	}
}

func TestSubmitRepositoryFailure(t *testing.T) {
	repo := &fakeRepo{distributeErr: errors.New("connection reset")}
	svc := newTestService(repo, 5)

	_, err := svc.Submit(context.Background(), validRequest(), meta())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != "LEAD_CREATE_ERROR" {
		t.Fatalf("expected LEAD_CREATE_ERROR, got %q", appErr.Code)
	}
	if appErr.Kind != apperr.KindInternal {
		t.Fatalf("expected internal kind, got %v", appErr.Kind)
	}
}

func TestListDistributionLogsRejectsUnknownReason(t *testing.T) {
	svc := newTestService(&fakeRepo{}, 5)

	_, _, err := svc.ListDistributionLogs(context.Background(), repository.ListLogsParams{Reason: "WHATEVER"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", appErr.Code)
	}
}
