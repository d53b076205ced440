// Package service exposes tenant analytics to the admin surface and to the
// analyst agent tools.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/luizpibo/WorkHub-AI/internal/analytics/domain"
)

// Store is the persistence contract the service needs.
type Store interface {
	FunnelReport(ctx context.Context, tenantID uuid.UUID) (*domain.FunnelReport, error)
	LeadReport(ctx context.Context, tenantID uuid.UUID) (*domain.LeadReport, error)
	Overview(ctx context.Context, tenantID uuid.UUID) (*domain.Overview, error)
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) FunnelReport(ctx context.Context, tenantID uuid.UUID) (*domain.FunnelReport, error) {
	return s.store.FunnelReport(ctx, tenantID)
}

func (s *Service) LeadReport(ctx context.Context, tenantID uuid.UUID) (*domain.LeadReport, error) {
	return s.store.LeadReport(ctx, tenantID)
}

func (s *Service) Overview(ctx context.Context, tenantID uuid.UUID) (*domain.Overview, error) {
	return s.store.Overview(ctx, tenantID)
}
