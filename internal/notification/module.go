// Package notification turns domain events into clinic-facing emails. It
// subscribes to the event bus and stays out of the request path: a failed
// email never fails a distribution.
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	clinicrepo "dentallead_backend/internal/clinics/repository"
	"dentallead_backend/internal/email"
	"dentallead_backend/internal/events"
	subsrepo "dentallead_backend/internal/subscriptions/repository"
	"dentallead_backend/platform/config"
	"dentallead_backend/platform/logger"
)

// ClinicContactReader resolves clinic contact details for delivery.
type ClinicContactReader interface {
	GetContact(ctx context.Context, id uuid.UUID) (clinicrepo.Contact, error)
}

// GrantReader resolves a clinic's current quota grant.
type GrantReader interface {
	CurrentGrant(ctx context.Context, clinicID uuid.UUID) (subsrepo.Subscription, error)
}

// Module delivers notifications in response to domain events.
type Module struct {
	sender   email.Sender
	contacts ClinicContactReader
	grants   GrantReader
	panelURL string
	log      *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, contacts ClinicContactReader, grants GrantReader, cfg config.EmailConfig, log *logger.Logger) *Module {
	return &Module{
		sender:   sender,
		contacts: contacts,
		grants:   grants,
		panelURL: cfg.GetAppBaseURL() + "/panel",
		log:      log,
	}
}

// RegisterHandlers subscribes the module to the events it acts on.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe("leads.assigned", events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		evt, ok := e.(events.LeadAssigned)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", e.EventName())
		}
		return m.handleLeadAssigned(ctx, evt)
	}))

	bus.Subscribe("subscriptions.expiring", events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		evt, ok := e.(events.SubscriptionExpiring)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", e.EventName())
		}
		return m.handleSubscriptionExpiring(ctx, evt)
	}))
}

func (m *Module) handleLeadAssigned(ctx context.Context, evt events.LeadAssigned) error {
	contact, err := m.contacts.GetContact(ctx, evt.ClinicID)
	if err != nil {
		return fmt.Errorf("resolve clinic contact: %w", err)
	}

	notice := email.LeadNotice{
		ClinicName:     contact.Name,
		ConsumerName:   evt.ConsumerName,
		ConsumerPhone:  evt.ConsumerPhone,
		City:           evt.City,
		Service:        evt.Service,
		QuotaRemaining: evt.QuotaRemaining,
		PanelURL:       m.panelURL,
	}
	if err := m.sender.SendLeadAssignedEmail(ctx, contact.Email, notice); err != nil {
		m.log.Error("failed to send lead notice", "clinic_id", evt.ClinicID, "lead_id", evt.LeadID, "error", err)
		return err
	}

	return nil
}

func (m *Module) handleSubscriptionExpiring(ctx context.Context, evt events.SubscriptionExpiring) error {
	contact, err := m.contacts.GetContact(ctx, evt.ClinicID)
	if err != nil {
		return fmt.Errorf("resolve clinic contact: %w", err)
	}

	quotaRemaining := 0
	if m.grants != nil {
		if grant, err := m.grants.CurrentGrant(ctx, evt.ClinicID); err == nil {
			quotaRemaining = grant.QuotaRemaining()
		}
	}

	notice := email.ExpiryNotice{
		ClinicName:     contact.Name,
		QuotaRemaining: quotaRemaining,
		ExpiresAt:      evt.ExpiresAt,
		PanelURL:       m.panelURL,
	}
	if err := m.sender.SendSubscriptionExpiringEmail(ctx, contact.Email, notice); err != nil {
		m.log.Error("failed to send expiry notice", "clinic_id", evt.ClinicID, "error", err)
		return err
	}

	return nil
}
