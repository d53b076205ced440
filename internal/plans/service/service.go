// Package service provides business logic for the plan catalog.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/luizpibo/WorkHub-AI/internal/plans/domain"
	"github.com/luizpibo/WorkHub-AI/internal/plans/repository"
	"github.com/luizpibo/WorkHub-AI/internal/plans/transport"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"

	"github.com/google/uuid"
)

// Store is the data access surface the service needs.
type Store interface {
	Create(ctx context.Context, p domain.Plan) (domain.Plan, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Plan, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]domain.Plan, error)
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]domain.Plan, error)
	Update(ctx context.Context, p domain.Plan) (domain.Plan, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// Service provides business logic for plans.
type Service struct {
	repo Store
}

// New creates a new plan service.
func New(repo Store) *Service {
	return &Service{repo: repo}
}

// Create adds a plan to the tenant's catalog.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreatePlanRequest) (transport.PlanResponse, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	plan := domain.Plan{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		PriceCents:   req.PriceCents,
		BillingCycle: domain.BillingCycle(req.BillingCycle),
		Features:     req.Features,
		IsActive:     isActive,
	}
	if plan.Features == nil {
		plan.Features = []string{}
	}

	created, err := s.repo.Create(ctx, plan)
	if err != nil {
		return transport.PlanResponse{}, err
	}
	return mapPlanResponse(created), nil
}

// GetByID returns a single plan.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.PlanResponse, error) {
	plan, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.PlanResponse{}, mapRepoErr(err)
	}
	return mapPlanResponse(plan), nil
}

// List returns all of a tenant's plans.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) (transport.ListPlansResponse, error) {
	plans, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return transport.ListPlansResponse{}, err
	}
	return mapListResponse(plans), nil
}

// ListActive returns the plans the sales agent may offer.
func (s *Service) ListActive(ctx context.Context, tenantID uuid.UUID) (transport.ListPlansResponse, error) {
	plans, err := s.repo.ListActive(ctx, tenantID)
	if err != nil {
		return transport.ListPlansResponse{}, err
	}
	return mapListResponse(plans), nil
}

// Update applies partial changes to a plan.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdatePlanRequest) (transport.PlanResponse, error) {
	plan, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.PlanResponse{}, mapRepoErr(err)
	}

	if req.Name != nil {
		plan.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		plan.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceCents != nil {
		plan.PriceCents = *req.PriceCents
	}
	if req.BillingCycle != nil {
		plan.BillingCycle = domain.BillingCycle(*req.BillingCycle)
	}
	if req.Features != nil {
		plan.Features = *req.Features
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	updated, err := s.repo.Update(ctx, plan)
	if err != nil {
		return transport.PlanResponse{}, mapRepoErr(err)
	}
	return mapPlanResponse(updated), nil
}

// Delete removes a plan from the catalog.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrPlanNotFound) {
		return apperr.NotFound("plan not found")
	}
	return err
}

func mapPlanResponse(p domain.Plan) transport.PlanResponse {
	return transport.PlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		PriceCents:   p.PriceCents,
		BillingCycle: string(p.BillingCycle),
		Features:     p.Features,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func mapListResponse(plans []domain.Plan) transport.ListPlansResponse {
	items := make([]transport.PlanResponse, 0, len(plans))
	for _, p := range plans {
		items = append(items, mapPlanResponse(p))
	}
	return transport.ListPlansResponse{Items: items, Total: len(items)}
}
