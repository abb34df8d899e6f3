// Package scheduler runs subscription maintenance in the background: an
// asynq worker sweeping expired grants and sending expiry reminders on a
// periodic schedule.
package scheduler

import (
	"github.com/hibiken/asynq"
)

// TaskSubscriptionExpireSweep marks overdue active grants inactive.
const TaskSubscriptionExpireSweep = "subscriptions.expire_sweep"

// TaskSubscriptionExpiryReminder notifies clinics whose grant ends soon.
const TaskSubscriptionExpiryReminder = "subscriptions.expiry_reminder"

// NewExpireSweepTask creates the sweep task. It carries no payload; the
// sweep always works on the current clock.
func NewExpireSweepTask() *asynq.Task {
	return asynq.NewTask(TaskSubscriptionExpireSweep, nil)
}

// NewExpiryReminderTask creates the reminder task.
func NewExpiryReminderTask() *asynq.Task {
	return asynq.NewTask(TaskSubscriptionExpiryReminder, nil)
}
