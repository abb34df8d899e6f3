// Package email delivers transactional mail to clinics: new-lead notices
// and subscription expiry reminders.
package email

import (
	"context"
	"time"

	"dentallead_backend/platform/config"
	"dentallead_backend/platform/logger"
)

// LeadNotice is the content of a new-lead email.
type LeadNotice struct {
	ClinicName     string
	ConsumerName   string
	ConsumerPhone  string
	City           string
	Service        string
	QuotaRemaining int
	PanelURL       string
}

// ExpiryNotice is the content of an expiry reminder email.
type ExpiryNotice struct {
	ClinicName     string
	QuotaRemaining int
	ExpiresAt      time.Time
	PanelURL       string
}

// Sender delivers clinic-facing notifications.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail string, notice LeadNotice) error
	SendSubscriptionExpiringEmail(ctx context.Context, toEmail string, notice ExpiryNotice) error
}

// NewSender picks the sender implementation from configuration: SMTP when
// email is enabled, a logging noop otherwise.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return &NoopSender{log: log}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(), cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
	)
}

// NoopSender logs instead of sending. Used in development and tests.
type NoopSender struct {
	log *logger.Logger
}

// SendLeadAssignedEmail logs the notice.
func (n *NoopSender) SendLeadAssignedEmail(_ context.Context, toEmail string, notice LeadNotice) error {
	if n.log != nil {
		n.log.Info("email disabled, skipping lead notice", "to", toEmail, "city", notice.City, "service", notice.Service)
	}
	return nil
}

// SendSubscriptionExpiringEmail logs the notice.
func (n *NoopSender) SendSubscriptionExpiringEmail(_ context.Context, toEmail string, notice ExpiryNotice) error {
	if n.log != nil {
		n.log.Info("email disabled, skipping expiry notice", "to", toEmail, "expires_at", notice.ExpiresAt)
	}
	return nil
}

// Compile-time check that NoopSender implements Sender.
var _ Sender = (*NoopSender)(nil)
