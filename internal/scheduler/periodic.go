package scheduler

import (
	"fmt"

	"github.com/hibiken/asynq"

	"dentallead_backend/platform/config"
	"dentallead_backend/platform/logger"
)

// Periodic enqueues the maintenance tasks on a fixed cadence using the
// asynq scheduler. It only enqueues; the Worker does the work, so several
// processes can run without duplicating effort.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewPeriodic creates the periodic enqueuer. The sweep runs every 15
// minutes, reminders once a day at 08:00 UTC.
func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	scheduler := asynq.NewScheduler(opt, nil)

	if _, err := scheduler.Register("@every 15m", NewExpireSweepTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register sweep schedule: %w", err)
	}
	if _, err := scheduler.Register("0 8 * * *", NewExpiryReminderTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register reminder schedule: %w", err)
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run starts the enqueuer until the process stops.
func (p *Periodic) Run() error {
	p.log.Info("periodic enqueuer starting")
	if err := p.scheduler.Run(); err != nil {
		return fmt.Errorf("periodic enqueuer: %w", err)
	}
	return nil
}

// Shutdown stops the enqueuer.
func (p *Periodic) Shutdown() {
	p.scheduler.Shutdown()
}
