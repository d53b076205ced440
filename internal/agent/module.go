package agent

import (
	"github.com/luizpibo/WorkHub-AI/platform/config"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

// Module bundles the router, toolset and invoker for the chat orchestrator.
// It has no HTTP surface of its own.
type Module struct {
	Router  *Router
	Toolset *Toolset
	Invoker *Invoker
}

// NewModule wires the agent components against the services its tools reach
// into.
func NewModule(cfg config.AgentConfig, log *logger.Logger, users UserOps, conversations ConversationOps, leads LeadOps, plans PlanOps, analytics AnalyticsOps) *Module {
	return &Module{
		Router:  NewRouter(),
		Toolset: NewToolset(users, conversations, leads, plans, analytics),
		Invoker: NewInvoker(cfg, log),
	}
}
