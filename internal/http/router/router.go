// Package router assembles the Gin engine: global middleware, health
// endpoint and the per-module route registration.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apphttp "github.com/luizpibo/WorkHub-AI/internal/http"
	"github.com/luizpibo/WorkHub-AI/internal/http/middleware"
	"github.com/luizpibo/WorkHub-AI/platform/httpkit"
)

// RoleAdmin is the JWT role required for the platform admin surface.
const RoleAdmin = "admin"

func New(app *apphttp.App) *gin.Engine {
	cfg := app.Config

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestTimer())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(buildCORS(cfg)))

	// Global per-IP throttle. The chat surface carries its own stricter
	// limiter on top of this one.
	limiter := httpkit.NewIPRateLimiter(rate.Limit(20), 40, app.Logger)
	engine.Use(limiter.RateLimit())

	engine.GET("/api/health", healthHandler(app.Health))

	v1 := engine.Group("/api/v1")
	admin := v1.Group("/admin", httpkit.AuthRequired(cfg), httpkit.RequireRole(RoleAdmin))

	rctx := &apphttp.RouterContext{
		Engine:          engine,
		V1:              v1,
		Admin:           admin,
		Config:          cfg,
		TenantAuth:      app.TenantAuth,
		ChatRateLimiter: httpkit.NewChatRateLimiter(app.Logger),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(rctx)
		app.Logger.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func buildCORS(cfg apphttp.RouterConfig) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Tenant-Slug", "X-Tenant-Secret"}
	corsCfg.AllowCredentials = cfg.GetCORSAllowCreds()
	corsCfg.MaxAge = 12 * time.Hour

	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.GetCORSOrigins()
	}
	return corsCfg
}

func healthHandler(health apphttp.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := health.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
