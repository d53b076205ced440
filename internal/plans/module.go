// Package plans provides the plan catalog bounded context module.
package plans

import (
	apphttp "github.com/luizpibo/WorkHub-AI/internal/http"
	"github.com/luizpibo/WorkHub-AI/internal/plans/handler"
	"github.com/luizpibo/WorkHub-AI/internal/plans/repository"
	"github.com/luizpibo/WorkHub-AI/internal/plans/service"
	"github.com/luizpibo/WorkHub-AI/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the plans bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the plans module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "plans"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts plan routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/tenants/:id/plans"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
