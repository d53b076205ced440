// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/luizpibo/WorkHub-AI/platform/config"
	"github.com/luizpibo/WorkHub-AI/platform/events"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., DB ping).
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// TenantAuth resolves each request to a tenant, from the credential
	// headers in multi-tenant mode or the configured default tenant in
	// single-tenant mode. Built by the tenants module and shared with
	// every chat-facing module.
	TenantAuth gin.HandlerFunc
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
