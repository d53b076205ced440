package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luizpibo/WorkHub-AI/internal/agent"
	"github.com/luizpibo/WorkHub-AI/internal/analytics"
	"github.com/luizpibo/WorkHub-AI/internal/chat"
	"github.com/luizpibo/WorkHub-AI/internal/conversations"
	"github.com/luizpibo/WorkHub-AI/internal/email"
	apphttp "github.com/luizpibo/WorkHub-AI/internal/http"
	"github.com/luizpibo/WorkHub-AI/internal/http/router"
	"github.com/luizpibo/WorkHub-AI/internal/identity"
	"github.com/luizpibo/WorkHub-AI/internal/leads"
	"github.com/luizpibo/WorkHub-AI/internal/notification"
	"github.com/luizpibo/WorkHub-AI/internal/plans"
	"github.com/luizpibo/WorkHub-AI/internal/prompts"
	"github.com/luizpibo/WorkHub-AI/internal/tenants"
	"github.com/luizpibo/WorkHub-AI/migrations"
	"github.com/luizpibo/WorkHub-AI/platform/cache"
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
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	cacheStore := newCacheStore(ctx, cfg, log)
	defer func() { _ = cacheStore.Close() }()

	sender := newEmailSender(cfg, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	tenantsModule := tenants.NewModule(pool, log, val)
	identityModule := identity.NewModule(pool, log)
	promptsModule := prompts.NewModule(pool, cacheStore, cfg, log, val)
	plansModule := plans.NewModule(pool, val)
	leadsModule := leads.NewModule(pool, eventBus, log)
	conversationsModule := conversations.NewModule(pool, leadsModule.Service(), eventBus, log, val)
	analyticsModule := analytics.NewModule(pool)

	agentModule := agent.NewModule(cfg, log,
		identityModule.Service(),
		conversationsModule.Service(),
		leadsModule.Service(),
		plansModule.Service(),
		analyticsModule.Service(),
	)
	chatModule := chat.NewModule(
		identityModule.Service(),
		conversationsModule.Service(),
		promptsModule.Service(),
		agentModule,
		log,
		val,
	)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(sender, tenantsModule.Service(), identityModule.Service(), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// Single-tenant deployments must point at an existing tenant; catching
	// the misconfiguration here beats failing every request later.
	if !cfg.GetMultiTenantEnabled() {
		if _, err := tenantsModule.Service().ResolveDefault(ctx, cfg.GetDefaultTenantSlug()); err != nil {
			log.Error("default tenant resolution failed", "slug", cfg.GetDefaultTenantSlug(), "error", err)
			panic("default tenant resolution failed: " + err.Error())
		}
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:     cfg,
		Logger:     log,
		Health:     pool,
		EventBus:   eventBus,
		TenantAuth: tenants.RequireTenant(tenantsModule.Service(), cfg),
		Modules: []apphttp.Module{
			tenantsModule,
			promptsModule,
			plansModule,
			conversationsModule,
			leadsModule,
			analyticsModule,
			chatModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// newCacheStore prefers Redis so prompt cache invalidation reaches every
// replica; the in-process store is the single-node fallback.
func newCacheStore(ctx context.Context, cfg *config.Config, log *logger.Logger) cache.Store {
	if cfg.IsRedisEnabled() {
		store, err := cache.NewRedisStore(ctx, cfg.GetRedisURL())
		if err == nil {
			log.Info("redis cache store initialized")
			return store
		}
		log.Warn("redis unavailable, falling back to in-memory cache", "error", err)
	}
	return cache.NewMemoryStore()
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
