// Package chat provides the public chat surface: the orchestrator that
// turns an inbound end-user message into an agent-driven reply.
package chat

import (
	"github.com/luizpibo/WorkHub-AI/internal/agent"
	"github.com/luizpibo/WorkHub-AI/internal/chat/handler"
	"github.com/luizpibo/WorkHub-AI/internal/chat/service"
	apphttp "github.com/luizpibo/WorkHub-AI/internal/http"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
	"github.com/luizpibo/WorkHub-AI/platform/validator"
)

// Module is the chat bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the orchestrator against identity, conversations, prompts
// and the agent components.
func NewModule(identity service.IdentityResolver, conversations service.ConversationOps, prompts service.PromptSource, agentModule *agent.Module, log *logger.Logger, val *validator.Validator) *Module {
	svc := service.New(identity, conversations, prompts, agentModule.Router, agentModule.Toolset, agentModule.Invoker, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the chat route behind tenant API key auth and the
// chat rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/chat", ctx.ChatRateLimiter.RateLimit(), ctx.TenantAuth)
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
