// Package leads provides the lead qualification bounded context module:
// scoring at handoff, objection tracking and the leads admin surface.
package leads

import (
	convdomain "github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	apphttp "github.com/luizpibo/WorkHub-AI/internal/http"
	"github.com/luizpibo/WorkHub-AI/internal/leads/handler"
	"github.com/luizpibo/WorkHub-AI/internal/leads/repository"
	"github.com/luizpibo/WorkHub-AI/internal/leads/service"
	"github.com/luizpibo/WorkHub-AI/platform/events"
	"github.com/luizpibo/WorkHub-AI/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module. It subscribes to
// conversation close events so converted conversations convert their lead.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc)

	bus.Subscribe(convdomain.EventClosed, events.HandlerFunc(svc.HandleConversationClosed))

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead admin routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/tenants/:id/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
