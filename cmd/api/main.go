package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"dentallead_backend/internal/auth"
	"dentallead_backend/internal/clinics"
	"dentallead_backend/internal/email"
	"dentallead_backend/internal/events"
	apphttp "dentallead_backend/internal/http"
	"dentallead_backend/internal/http/router"
	"dentallead_backend/internal/leads"
	"dentallead_backend/internal/notification"
	"dentallead_backend/internal/subscriptions"
	"dentallead_backend/platform/config"
	"dentallead_backend/platform/db"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/ratelimit"
	"dentallead_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting api", "env", cfg.Env, "addr", cfg.GetHTTPAddr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migration", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run migrations", "error", err)
		panic("failed to run migrations: " + err.Error())
	}

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
	limiter := newIntakeLimiter(cfg, log)

	authModule := auth.NewModule(pool, val, cfg, log)
	clinicsModule := clinics.NewModule(pool, val)
	subscriptionsModule := subscriptions.NewModule(pool, eventBus, val, log)
	leadsModule := leads.NewModule(pool, eventBus, limiter, val, cfg, log)

	sender := email.NewSender(cfg, log)
	notificationModule := notification.New(sender, clinicsModule.Service(), subscriptionsModule.Service(), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			clinicsModule,
			subscriptionsModule,
			leadsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// newIntakeLimiter picks the sliding-window backend: Redis when configured,
// so horizontally scaled instances share one window, in-process otherwise.
func newIntakeLimiter(cfg *config.Config, log *logger.Logger) ratelimit.Limiter {
	window := cfg.GetLeadRateLimitWindow()
	maxHits := cfg.GetLeadRateLimitMax()

	if cfg.GetRedisURL() != "" {
		opt, err := redis.ParseURL(cfg.GetRedisURL())
		if err != nil {
			log.Error("invalid redis url, falling back to in-memory limiter", "error", err)
			return ratelimit.NewSlidingWindow(window, maxHits)
		}
		log.Info("using redis-backed intake limiter")
		return ratelimit.NewRedisSlidingWindow(redis.NewClient(opt), window, maxHits)
	}

	log.Info("using in-memory intake limiter")
	return ratelimit.NewSlidingWindow(window, maxHits)
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
