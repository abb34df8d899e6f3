package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	clinicsrepo "dentallead_backend/internal/clinics/repository"
	"dentallead_backend/internal/email"
	"dentallead_backend/internal/events"
	"dentallead_backend/internal/notification"
	subsrepo "dentallead_backend/internal/subscriptions/repository"
	subssvc "dentallead_backend/internal/subscriptions/service"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/validator"
)

type schedulerConfig struct{}

func (schedulerConfig) GetRedisURL() string        { return "redis://127.0.0.1:6379" }
func (schedulerConfig) GetAsynqQueueName() string  { return "default" }
func (schedulerConfig) GetAsynqConcurrency() int   { return 1 }
func (schedulerConfig) GetExpiryReminderDays() int { return 3 }

type emailConfig struct{}

func (emailConfig) GetEmailEnabled() bool       { return false }
func (emailConfig) GetSMTPHost() string         { return "" }
func (emailConfig) GetSMTPPort() int            { return 0 }
func (emailConfig) GetSMTPUsername() string     { return "" }
func (emailConfig) GetSMTPPassword() string     { return "" }
func (emailConfig) GetEmailFromName() string    { return "" }
func (emailConfig) GetEmailFromAddress() string { return "" }
func (emailConfig) GetAppBaseURL() string       { return "https://dentallead.example" }

type fakeSubsRepo struct {
	subsrepo.Repository

	grants []subsrepo.ExpiringGrant
}

func (f *fakeSubsRepo) ExpiringWithin(_ context.Context, _ time.Time, _ time.Duration) ([]subsrepo.ExpiringGrant, error) {
	return f.grants, nil
}

type fakeContacts struct {
	contact clinicsrepo.Contact
}

func (f *fakeContacts) GetContact(_ context.Context, _ uuid.UUID) (clinicsrepo.Contact, error) {
	return f.contact, nil
}

// captureSender funnels expiry notices into a channel so the test can wait
// for the bus's asynchronous dispatch.
type captureSender struct {
	expiry chan email.ExpiryNotice
}

func (s *captureSender) SendLeadAssignedEmail(_ context.Context, _ string, _ email.LeadNotice) error {
	return nil
}

func (s *captureSender) SendSubscriptionExpiringEmail(_ context.Context, _ string, notice email.ExpiryNotice) error {
	s.expiry <- notice
	return nil
}

func TestExpiryReminderDeliversNotices(t *testing.T) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)

	clinicID := uuid.New()
	expiresAt := time.Now().Add(48 * time.Hour)
	repo := &fakeSubsRepo{grants: []subsrepo.ExpiringGrant{{
		SubscriptionID: uuid.New(),
		ClinicID:       clinicID,
		ClinicName:     "Smile Clinic",
		ClinicEmail:    "front@smile.example",
		QuotaRemaining: 2,
		ExpiresAt:      expiresAt,
	}}}
	subscriptions := subssvc.New(repo, bus, validator.New(), log)

	sender := &captureSender{expiry: make(chan email.ExpiryNotice, 1)}
	contacts := &fakeContacts{contact: clinicsrepo.Contact{ID: clinicID, Name: "Smile Clinic", Email: "front@smile.example"}}
	notification.New(sender, contacts, nil, emailConfig{}, log).RegisterHandlers(bus)

	w, err := NewWorker(schedulerConfig{}, subscriptions, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.handleExpiryReminder(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case notice := <-sender.expiry:
		if notice.ClinicName != "Smile Clinic" {
			t.Fatalf("unexpected notice: %+v", notice)
		}
		if !notice.ExpiresAt.Equal(expiresAt) {
			t.Fatalf("expiry timestamp mangled: %v", notice.ExpiresAt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expiry notice never reached the email sender")
	}
}
