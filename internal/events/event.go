// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"dentallead_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Distribution Events
// =============================================================================

// LeadSubmitted is published after every committed distribution attempt,
// whether or not a clinic was assigned.
type LeadSubmitted struct {
	BaseEvent
	LeadID   uuid.UUID  `json:"leadId"`
	City     string     `json:"city"`
	Service  string     `json:"service"`
	Assigned bool       `json:"assigned"`
	ClinicID *uuid.UUID `json:"clinicId,omitempty"`
	Reason   string     `json:"reason"`
}

func (e LeadSubmitted) EventName() string { return "leads.submitted" }

// LeadAssigned is published when a lead is assigned to a clinic.
type LeadAssigned struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	ClinicID       uuid.UUID `json:"clinicId"`
	SubscriptionID uuid.UUID `json:"subscriptionId"`
	City           string    `json:"city"`
	Service        string    `json:"service"`
	ConsumerName   string    `json:"consumerName"`
	ConsumerPhone  string    `json:"consumerPhone"`
	QuotaRemaining int       `json:"quotaRemaining"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// =============================================================================
// Subscription Events
// =============================================================================

// QuotaToppedUp is published when an external payment or admin action adds
// quota to a clinic's subscription.
type QuotaToppedUp struct {
	BaseEvent
	ClinicID       uuid.UUID `json:"clinicId"`
	SubscriptionID uuid.UUID `json:"subscriptionId"`
	QuotaAdded     int       `json:"quotaAdded"`
	QuotaTotal     int       `json:"quotaTotal"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func (e QuotaToppedUp) EventName() string { return "subscriptions.quota.topped_up" }

// SubscriptionExpiring is published by the maintenance sweep for grants
// that expire within the reminder horizon.
type SubscriptionExpiring struct {
	BaseEvent
	ClinicID       uuid.UUID `json:"clinicId"`
	SubscriptionID uuid.UUID `json:"subscriptionId"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func (e SubscriptionExpiring) EventName() string { return "subscriptions.expiring" }
