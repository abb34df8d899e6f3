package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	clinicrepo "dentallead_backend/internal/clinics/repository"
	"dentallead_backend/internal/email"
	"dentallead_backend/internal/events"
	subsrepo "dentallead_backend/internal/subscriptions/repository"
	"dentallead_backend/platform/logger"
)

type fakeSender struct {
	leadNotices   []email.LeadNotice
	leadTo        []string
	expiryNotices []email.ExpiryNotice
}

func (f *fakeSender) SendLeadAssignedEmail(_ context.Context, to string, notice email.LeadNotice) error {
	f.leadTo = append(f.leadTo, to)
	f.leadNotices = append(f.leadNotices, notice)
	return nil
}

func (f *fakeSender) SendSubscriptionExpiringEmail(_ context.Context, _ string, notice email.ExpiryNotice) error {
	f.expiryNotices = append(f.expiryNotices, notice)
	return nil
}

type fakeContacts struct {
	contact clinicrepo.Contact
}

func (f *fakeContacts) GetContact(_ context.Context, _ uuid.UUID) (clinicrepo.Contact, error) {
	return f.contact, nil
}

type fakeGrants struct {
	grant subsrepo.Subscription
}

func (f *fakeGrants) CurrentGrant(_ context.Context, _ uuid.UUID) (subsrepo.Subscription, error) {
	return f.grant, nil
}

type emailConfig struct{}

func (emailConfig) GetEmailEnabled() bool       { return false }
func (emailConfig) GetSMTPHost() string         { return "" }
func (emailConfig) GetSMTPPort() int            { return 0 }
func (emailConfig) GetSMTPUsername() string     { return "" }
func (emailConfig) GetSMTPPassword() string     { return "" }
func (emailConfig) GetEmailFromName() string    { return "" }
func (emailConfig) GetEmailFromAddress() string { return "" }
func (emailConfig) GetAppBaseURL() string       { return "https://dentallead.example" }

func TestLeadAssignedSendsNotice(t *testing.T) {
	sender := &fakeSender{}
	clinicID := uuid.New()
	contacts := &fakeContacts{contact: clinicrepo.Contact{ID: clinicID, Name: "Smile Clinic", Email: "front@smile.example"}}
	m := New(sender, contacts, nil, emailConfig{}, logger.New("test"))

	bus := events.NewInMemoryBus(logger.New("test"))
	m.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.LeadAssigned{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         uuid.New(),
		ClinicID:       clinicID,
		SubscriptionID: uuid.New(),
		City:           "istanbul",
		Service:        "implant",
		ConsumerName:   "Ayşe Yılmaz",
		ConsumerPhone:  "+905321234567",
		QuotaRemaining: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.leadNotices) != 1 {
		t.Fatalf("expected 1 notice, got %d", len(sender.leadNotices))
	}
	if sender.leadTo[0] != "front@smile.example" {
		t.Fatalf("notice sent to %q", sender.leadTo[0])
	}
	notice := sender.leadNotices[0]
	if notice.ClinicName != "Smile Clinic" || notice.QuotaRemaining != 2 {
		t.Fatalf("unexpected notice: %+v", notice)
	}
	if notice.PanelURL != "https://dentallead.example/panel" {
		t.Fatalf("unexpected panel url: %q", notice.PanelURL)
	}
}

func TestSubscriptionExpiringIncludesRemainingQuota(t *testing.T) {
	sender := &fakeSender{}
	clinicID := uuid.New()
	contacts := &fakeContacts{contact: clinicrepo.Contact{ID: clinicID, Name: "Smile Clinic", Email: "front@smile.example"}}
	grants := &fakeGrants{grant: subsrepo.Subscription{QuotaTotal: 10, QuotaUsed: 7}}
	m := New(sender, contacts, grants, emailConfig{}, logger.New("test"))

	bus := events.NewInMemoryBus(logger.New("test"))
	m.RegisterHandlers(bus)

	expiresAt := time.Now().Add(48 * time.Hour)
	err := bus.PublishSync(context.Background(), events.SubscriptionExpiring{
		BaseEvent:      events.NewBaseEvent(),
		ClinicID:       clinicID,
		SubscriptionID: uuid.New(),
		ExpiresAt:      expiresAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.expiryNotices) != 1 {
		t.Fatalf("expected 1 notice, got %d", len(sender.expiryNotices))
	}
	notice := sender.expiryNotices[0]
	if notice.QuotaRemaining != 3 {
		t.Fatalf("expected 3 remaining, got %d", notice.QuotaRemaining)
	}
	if !notice.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("expiry timestamp mangled: %v", notice.ExpiresAt)
	}
}
