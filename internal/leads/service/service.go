// Package service applies lead scoring and keeps the one-lead-per-conversation
// invariant through the repository upsert.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	convdomain "github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	"github.com/luizpibo/WorkHub-AI/internal/leads/domain"
	"github.com/luizpibo/WorkHub-AI/internal/leads/repository"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"
	"github.com/luizpibo/WorkHub-AI/platform/events"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

// Store is the persistence contract the service needs.
type Store interface {
	Upsert(ctx context.Context, l *domain.Lead) (*domain.Lead, error)
	GetByConversation(ctx context.Context, tenantID, conversationID uuid.UUID) (*domain.Lead, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, stage *domain.Stage, limit, offset int) ([]domain.Lead, error)
	SetObjections(ctx context.Context, tenantID, conversationID uuid.UUID, objections []string) (*domain.Lead, error)
	SetPreferredPlan(ctx context.Context, tenantID, conversationID, planID uuid.UUID) (*domain.Lead, error)
	MarkConverted(ctx context.Context, tenantID, conversationID uuid.UUID) (*domain.Lead, error)
}

type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

func New(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// ApplyHandoff scores the conversation at handoff time and upserts its lead.
// Repeated handoffs update the same lead row; the score never decreases.
func (s *Service) ApplyHandoff(ctx context.Context, tenantID, conversationID, userID uuid.UUID, stage convdomain.FunnelStage, reason string) (*domain.Lead, error) {
	assessment := domain.Assess(stage, reason)

	lead, err := s.store.Upsert(ctx, &domain.Lead{
		TenantID:       tenantID,
		ConversationID: conversationID,
		UserID:         userID,
		Stage:          assessment.Stage,
		Score:          domain.ClampScore(assessment.Score),
		Reason:         reason,
		NextAction:     assessment.NextAction,
	})
	if err != nil {
		return nil, err
	}

	if lead.Stage == domain.StageHot || lead.Stage == domain.StageQualified {
		s.bus.Publish(ctx, domain.QualifiedEvent{
			BaseEvent:      events.NewBaseEvent(),
			TenantID:       tenantID,
			ConversationID: conversationID,
			UserID:         userID,
			Stage:          lead.Stage,
			Score:          lead.Score,
			Reason:         reason,
		})
	}
	return lead, nil
}

func (s *Service) GetByConversation(ctx context.Context, tenantID, conversationID uuid.UUID) (*domain.Lead, error) {
	lead, err := s.store.GetByConversation(ctx, tenantID, conversationID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, stageFilter string, limit, offset int) ([]domain.Lead, error) {
	var stage *domain.Stage
	if stageFilter != "" {
		if !domain.IsKnownStage(stageFilter) {
			return nil, apperr.Validation(fmt.Sprintf("unknown lead stage %q", stageFilter))
		}
		st := domain.Stage(stageFilter)
		stage = &st
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByTenant(ctx, tenantID, stage, limit, offset)
}

// AddObjections merges new objection tags into the lead's set. Duplicate
// tags collapse by exact string equality.
func (s *Service) AddObjections(ctx context.Context, tenantID, conversationID uuid.UUID, tags []string) (*domain.Lead, error) {
	lead, err := s.store.GetByConversation(ctx, tenantID, conversationID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	merged := domain.MergeObjections(lead.Objections, tags)
	lead, err = s.store.SetObjections(ctx, tenantID, conversationID, merged)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return lead, nil
}

func (s *Service) SetPreferredPlan(ctx context.Context, tenantID, conversationID, planID uuid.UUID) (*domain.Lead, error) {
	lead, err := s.store.SetPreferredPlan(ctx, tenantID, conversationID, planID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return lead, nil
}

// HandleConversationClosed marks the lead converted when its conversation
// closes as converted. Conversations without a lead are ignored.
func (s *Service) HandleConversationClosed(ctx context.Context, event events.Event) error {
	closed, ok := event.(convdomain.ClosedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventName())
	}
	if closed.Status != convdomain.StatusConverted {
		return nil
	}

	if _, err := s.store.MarkConverted(ctx, closed.TenantID, closed.ConversationID); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return nil
		}
		return err
	}
	s.log.Info("lead converted", "tenant_id", closed.TenantID, "conversation_id", closed.ConversationID)
	return nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrLeadNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}
