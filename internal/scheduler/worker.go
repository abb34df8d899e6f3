package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	subsrepo "dentallead_backend/internal/subscriptions/repository"
	"dentallead_backend/platform/config"
	"dentallead_backend/platform/logger"
)

// SubscriptionMaintainer is the slice of the subscriptions service the
// worker needs.
type SubscriptionMaintainer interface {
	ExpireSweep(ctx context.Context) (int64, error)
	ExpiringWithin(ctx context.Context, horizon time.Duration) ([]subsrepo.ExpiringGrant, error)
}

// Worker consumes maintenance tasks from the asynq queue.
type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	subscriptions SubscriptionMaintainer
	reminderDays  int
	log           *logger.Logger
}

// NewWorker creates the maintenance worker.
func NewWorker(cfg config.SchedulerConfig, subscriptions SubscriptionMaintainer, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	reminderDays := cfg.GetExpiryReminderDays()
	if reminderDays < 1 {
		reminderDays = 3
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:        server,
		mux:           mux,
		subscriptions: subscriptions,
		reminderDays:  reminderDays,
		log:           log,
	}

	mux.HandleFunc(TaskSubscriptionExpireSweep, w.handleExpireSweep)
	mux.HandleFunc(TaskSubscriptionExpiryReminder, w.handleExpiryReminder)

	return w, nil
}

func (w *Worker) handleExpireSweep(ctx context.Context, _ *asynq.Task) error {
	swept, err := w.subscriptions.ExpireSweep(ctx)
	if err != nil {
		return fmt.Errorf("expire sweep: %w", err)
	}

	w.log.Info("subscription sweep finished", "swept", swept)
	return nil
}

func (w *Worker) handleExpiryReminder(ctx context.Context, _ *asynq.Task) error {
	horizon := time.Duration(w.reminderDays) * 24 * time.Hour
	grants, err := w.subscriptions.ExpiringWithin(ctx, horizon)
	if err != nil {
		return fmt.Errorf("expiry reminders: %w", err)
	}

	w.log.Info("expiry reminders dispatched", "grants", len(grants), "horizon_days", w.reminderDays)
	return nil
}

// Run serves the queue until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("scheduler worker: %w", err)
	}
	return nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
