// Package identity provides the end-user identity bounded context module.
// It has no HTTP surface of its own; the chat orchestrator and the agent
// tools consume its service directly.
package identity

import (
	"github.com/luizpibo/WorkHub-AI/internal/identity/repository"
	"github.com/luizpibo/WorkHub-AI/internal/identity/service"
	"github.com/luizpibo/WorkHub-AI/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the identity bounded context module.
type Module struct {
	service *service.Service
}

// NewModule creates and initializes the identity module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	return &Module{service: service.New(repo, log)}
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}
