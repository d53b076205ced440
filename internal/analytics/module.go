// Package analytics provides tenant-scoped aggregate reporting, consumed by
// the admin surface and by the analyst agent tools.
package analytics

import (
	"github.com/luizpibo/WorkHub-AI/internal/analytics/handler"
	"github.com/luizpibo/WorkHub-AI/internal/analytics/repository"
	"github.com/luizpibo/WorkHub-AI/internal/analytics/service"
	apphttp "github.com/luizpibo/WorkHub-AI/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the analytics module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts analytics admin routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/tenants/:id/analytics"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
