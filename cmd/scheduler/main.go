package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luizpibo/WorkHub-AI/internal/conversations"
	"github.com/luizpibo/WorkHub-AI/internal/email"
	"github.com/luizpibo/WorkHub-AI/internal/identity"
	"github.com/luizpibo/WorkHub-AI/internal/leads"
	"github.com/luizpibo/WorkHub-AI/internal/notification"
	"github.com/luizpibo/WorkHub-AI/internal/scheduler"
	"github.com/luizpibo/WorkHub-AI/internal/tenants"
	"github.com/luizpibo/WorkHub-AI/platform/config"
	"github.com/luizpibo/WorkHub-AI/platform/db"
	"github.com/luizpibo/WorkHub-AI/platform/events"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
	"github.com/luizpibo/WorkHub-AI/platform/validator"
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

	// The sweep publishes conversation.abandoned events, so the worker
	// process carries the same subscribers as the API.
	tenantsModule := tenants.NewModule(pool, log, val)
	identityModule := identity.NewModule(pool, log)
	leadsModule := leads.NewModule(pool, eventBus, log)
	conversationsModule := conversations.NewModule(pool, leadsModule.Service(), eventBus, log, val)

	sender := newEmailSender(cfg, log)
	notificationModule := notification.New(sender, tenantsModule.Service(), identityModule.Service(), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	dispatcher := scheduler.NewSweepDispatcher(client, cfg, cfg, log)
	go dispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, conversationsModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func newEmailSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email delivery disabled; notifications will be dropped")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
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
