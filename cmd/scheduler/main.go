package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	clinicsrepo "dentallead_backend/internal/clinics/repository"
	clinicssvc "dentallead_backend/internal/clinics/service"
	"dentallead_backend/internal/email"
	"dentallead_backend/internal/events"
	"dentallead_backend/internal/notification"
	"dentallead_backend/internal/scheduler"
	"dentallead_backend/internal/subscriptions/repository"
	"dentallead_backend/internal/subscriptions/service"
	"dentallead_backend/platform/config"
	"dentallead_backend/platform/db"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	subscriptionsService := service.New(repository.New(pool), eventBus, val, log)
	clinicsService := clinicssvc.New(clinicsrepo.New(pool), val)

	// Expiry reminders published by the worker need a subscriber in this
	// process, or they go nowhere.
	sender := email.NewSender(cfg, log)
	notification.New(sender, clinicsService, subscriptionsService, cfg, log).RegisterHandlers(eventBus)

	worker, err := scheduler.NewWorker(cfg, subscriptionsService, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic enqueuer", "error", err)
		panic("failed to initialize periodic enqueuer: " + err.Error())
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return worker.Run(groupCtx)
	})
	group.Go(func() error {
		go func() {
			<-groupCtx.Done()
			periodic.Shutdown()
		}()
		return periodic.Run()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("scheduler stopped", "error", err)
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
