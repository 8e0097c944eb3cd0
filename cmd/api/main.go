package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callintake_backend/internal/calls"
	"callintake_backend/internal/calls/repository"
	"callintake_backend/internal/events"
	apphttp "callintake_backend/internal/http"
	"callintake_backend/internal/http/router"
	"callintake_backend/internal/notification"
	"callintake_backend/internal/scheduler"
	"callintake_backend/internal/sessions"
	"callintake_backend/migrations"
	"callintake_backend/platform/config"
	"callintake_backend/platform/db"
	"callintake_backend/platform/logger"
	"callintake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if cfg.IsDatabaseEnabled() {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")

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
		log.Info("database connection established")
	} else {
		log.Warn("DATABASE_URL not configured; call records will not be persisted to Postgres")
	}

	var redisClient *redis.Client
	if cfg.IsRedisEnabled() {
		opt, err := redis.ParseURL(cfg.GetRedisURL())
		if err != nil {
			log.Error("failed to parse redis url", "error", err)
			panic("failed to parse redis url: " + err.Error())
		}
		redisClient = redis.NewClient(opt)
		defer func() { _ = redisClient.Close() }()
	}

	// Call record store: Postgres first, Redis as fallback, memory as the
	// last resort so the service always comes up.
	stores := make([]repository.Store, 0, 3)
	if pool != nil {
		stores = append(stores, repository.NewPostgresStore(pool))
	}
	if redisClient != nil {
		stores = append(stores, repository.NewRedisStore(redisClient))
	}
	stores = append(stores, repository.NewMemoryStore())
	store := repository.NewChain(log, stores...)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	followUpScheduler, closeScheduler := initFollowUpScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	var sender notification.Sender
	if cfg.GetEmailEnabled() {
		sender = notification.NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
			cfg.GetDispatchEmail(),
		)
	} else {
		log.Warn("SMTP_HOST not configured; escalation alerts disabled")
	}
	notification.NewModule(eventBus, sender, log)

	// Scheduler module defers follow-ups for calls that ended without an
	// appointment (not HTTP-facing)
	scheduler.NewModule(eventBus, followUpScheduler, cfg.GetFollowUpDelay(), log)

	callsModule := calls.NewModule(store, eventBus, log, val)
	sessionsModule := sessions.NewModule(cfg, callsModule.Service, log, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	var health apphttp.HealthChecker
	if pool != nil {
		health = pool
	}

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			callsModule,
			sessionsModule,
		},
	}

	engine := router.New(app)
	srv := &nethttp.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Idle session sweeper finalizes abandoned calls
	g.Go(func() error {
		sessionsModule.Manager.Run(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

func initFollowUpScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.FollowUpScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; call follow-ups disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize follow-up scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
