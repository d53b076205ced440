// Package prompts provides the prompt and knowledge bounded context module:
// versioned agent prompts and tenant knowledge documents, with a TTL cache
// in front of the agent-facing read path.
package prompts

import (
	apphttp "github.com/luizpibo/WorkHub-AI/internal/http"
	"github.com/luizpibo/WorkHub-AI/internal/prompts/handler"
	"github.com/luizpibo/WorkHub-AI/internal/prompts/repository"
	"github.com/luizpibo/WorkHub-AI/internal/prompts/service"
	"github.com/luizpibo/WorkHub-AI/platform/cache"
	"github.com/luizpibo/WorkHub-AI/platform/config"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
	"github.com/luizpibo/WorkHub-AI/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the prompts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the prompts module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cacheStore cache.Store, cfg config.CacheConfig, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cacheStore, cfg.GetPromptCacheTTL(), cfg.GetKnowledgeCacheTTL(), log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "prompts"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts prompt and knowledge routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPromptRoutes(ctx.Admin.Group("/tenants/:id/prompts"))
	m.handler.RegisterKnowledgeRoutes(ctx.Admin.Group("/tenants/:id/knowledge"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
