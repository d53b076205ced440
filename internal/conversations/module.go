// Package conversations provides the conversation bounded context module:
// conversation lifecycle, message history and the abandonment sweep.
package conversations

import (
	apphttp "github.com/luizpibo/WorkHub-AI/internal/http"
	"github.com/luizpibo/WorkHub-AI/internal/conversations/handler"
	"github.com/luizpibo/WorkHub-AI/internal/conversations/repository"
	"github.com/luizpibo/WorkHub-AI/internal/conversations/service"
	"github.com/luizpibo/WorkHub-AI/platform/events"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
	"github.com/luizpibo/WorkHub-AI/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the conversations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the conversations module with all its
// dependencies. The lead recorder is the leads service; handoffs upsert the
// conversation's lead through it.
func NewModule(pool *pgxpool.Pool, leads service.LeadRecorder, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leads, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversations"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts conversation admin routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/tenants/:id/conversations"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
