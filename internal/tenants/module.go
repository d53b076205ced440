// Package tenants provides the tenant bounded context module: account
// administration and API key authentication for the chat surface.
package tenants

import (
	apphttp "github.com/luizpibo/WorkHub-AI/internal/http"
	"github.com/luizpibo/WorkHub-AI/internal/tenants/handler"
	"github.com/luizpibo/WorkHub-AI/internal/tenants/repository"
	"github.com/luizpibo/WorkHub-AI/internal/tenants/service"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
	"github.com/luizpibo/WorkHub-AI/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the tenants bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the tenants module with all its dependencies.
func NewModule(pool *pgxpool.Pool, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tenants"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts tenant admin routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/tenants"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
