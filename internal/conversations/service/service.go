// Package service implements conversation lifecycle rules on top of the
// repository. Status transitions are validated here; repositories stay dumb.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	"github.com/luizpibo/WorkHub-AI/internal/conversations/repository"
	leaddomain "github.com/luizpibo/WorkHub-AI/internal/leads/domain"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"
	"github.com/luizpibo/WorkHub-AI/platform/events"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

// HistoryLimit caps how many turns are loaded for agent context.
const HistoryLimit = 40

// Store is the persistence contract the service needs.
type Store interface {
	Create(ctx context.Context, c *domain.Conversation) (*domain.Conversation, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Conversation, error)
	GetActiveForUser(ctx context.Context, tenantID, userID uuid.UUID) (*domain.Conversation, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, status *domain.Status, limit, offset int) ([]domain.Conversation, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.Status) (*domain.Conversation, error)
	SetHandoff(ctx context.Context, tenantID, id uuid.UUID, reason, summary string) (*domain.Conversation, error)
	UpdateStage(ctx context.Context, tenantID, id uuid.UUID, stage domain.FunnelStage) (*domain.Conversation, error)
	UpdateContext(ctx context.Context, tenantID, id uuid.UUID, summary *string, interestedPlanID *uuid.UUID) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, m *domain.Message) (*domain.Message, error)
	RecentMessages(ctx context.Context, tenantID, conversationID uuid.UUID, limit int) ([]domain.Message, error)
	MarkAbandonedBefore(ctx context.Context, cutoff time.Time) ([]domain.Conversation, error)
}

// LeadRecorder scores and upserts the lead tied to a handed-off
// conversation. Satisfied by the leads service.
type LeadRecorder interface {
	ApplyHandoff(ctx context.Context, tenantID, conversationID, userID uuid.UUID, stage domain.FunnelStage, reason string) (*leaddomain.Lead, error)
}

type Service struct {
	store Store
	leads LeadRecorder
	bus   events.Bus
	log   *logger.Logger
}

func New(store Store, leads LeadRecorder, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, leads: leads, bus: bus, log: log}
}

// GetOrCreateActive returns the user's open conversation, creating a fresh
// one when none exists. A user has at most one open conversation per tenant;
// terminal conversations never get reopened.
func (s *Service) GetOrCreateActive(ctx context.Context, tenantID, userID uuid.UUID) (*domain.Conversation, bool, error) {
	conv, err := s.store.GetActiveForUser(ctx, tenantID, userID)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		return nil, false, err
	}

	conv, err = s.store.Create(ctx, &domain.Conversation{
		TenantID:    tenantID,
		UserID:      userID,
		Status:      domain.StatusActive,
		FunnelStage: domain.StageAwareness,
	})
	if err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Conversation, error) {
	conv, err := s.store.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return conv, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, statusFilter string, limit, offset int) ([]domain.Conversation, error) {
	var status *domain.Status
	if statusFilter != "" {
		if !domain.IsKnownStatus(statusFilter) {
			return nil, apperr.Validation(fmt.Sprintf("unknown status %q", statusFilter))
		}
		st := domain.Status(statusFilter)
		status = &st
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByTenant(ctx, tenantID, status, limit, offset)
}

// Append writes one turn to the conversation. Appending to a terminal
// conversation is a conflict; the caller should open a new one instead.
func (s *Service) Append(ctx context.Context, tenantID, conversationID uuid.UUID, role domain.MessageRole, content string) (*domain.Message, error) {
	return s.AppendTraced(ctx, tenantID, conversationID, role, content, nil)
}

// AppendTraced is Append with the agent's tool invocation trace attached.
func (s *Service) AppendTraced(ctx context.Context, tenantID, conversationID uuid.UUID, role domain.MessageRole, content string, trace json.RawMessage) (*domain.Message, error) {
	if !domain.IsKnownRole(string(role)) {
		return nil, apperr.Validation(fmt.Sprintf("unknown message role %q", role))
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("message content must not be empty")
	}

	conv, err := s.store.GetByID(ctx, tenantID, conversationID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if conv.Status.IsTerminal() {
		return nil, apperr.Conflict(fmt.Sprintf("conversation is %s", conv.Status))
	}

	return s.store.AppendMessage(ctx, &domain.Message{
		ConversationID: conversationID,
		TenantID:       tenantID,
		Role:           role,
		Content:        content,
		Trace:          trace,
	})
}

// History returns the most recent turns in chronological order.
func (s *Service) History(ctx context.Context, tenantID, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = HistoryLimit
	}
	return s.store.RecentMessages(ctx, tenantID, conversationID, limit)
}

// UpdateStage moves the conversation to any known funnel stage. Backwards
// moves are allowed: the agent's read of the buyer beats funnel order.
func (s *Service) UpdateStage(ctx context.Context, tenantID, conversationID uuid.UUID, stage string) (*domain.Conversation, error) {
	if !domain.IsKnownFunnelStage(stage) {
		return nil, apperr.Validation(fmt.Sprintf("unknown funnel stage %q", stage))
	}

	conv, err := s.store.GetByID(ctx, tenantID, conversationID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if conv.Status.IsTerminal() {
		return nil, apperr.Conflict(fmt.Sprintf("conversation is %s", conv.Status))
	}

	conv, err = s.store.UpdateStage(ctx, tenantID, conversationID, domain.FunnelStage(stage))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return conv, nil
}

// Handoff escalates the conversation to a human. It accepts any non-terminal
// conversation; handing off one already awaiting a human re-records the
// reason and timestamp and re-scores its lead, never lowering the score. The
// summary overwrites the conversation context for the operator taking over,
// a system message records the transfer in the transcript, and the lead is
// upserted so both the agent tool and the admin endpoint leave the same
// trail.
func (s *Service) Handoff(ctx context.Context, tenantID, conversationID uuid.UUID, reason, summary string) (*domain.Conversation, *leaddomain.Lead, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, nil, apperr.Validation("handoff reason must not be empty")
	}
	summary = strings.TrimSpace(summary)

	conv, err := s.store.GetByID(ctx, tenantID, conversationID)
	if err != nil {
		return nil, nil, mapRepoErr(err)
	}
	if !conv.Status.AcceptsHandoff() {
		return nil, nil, apperr.Conflict(fmt.Sprintf("conversation is %s", conv.Status))
	}

	conv, err = s.store.SetHandoff(ctx, tenantID, conversationID, reason, summary)
	if err != nil {
		return nil, nil, mapRepoErr(err)
	}

	content := "Transferencia solicitada para atendimento humano.\nMotivo: " + reason
	if summary != "" {
		content += "\nResumo: " + summary
	}
	if _, err := s.store.AppendMessage(ctx, &domain.Message{
		ConversationID: conversationID,
		TenantID:       tenantID,
		Role:           domain.RoleSystem,
		Content:        content,
	}); err != nil {
		return nil, nil, err
	}

	lead, err := s.leads.ApplyHandoff(ctx, tenantID, conversationID, conv.UserID, conv.FunnelStage, reason)
	if err != nil {
		return nil, nil, err
	}

	s.bus.Publish(ctx, domain.HandedOffEvent{
		BaseEvent:      events.NewBaseEvent(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		UserID:         conv.UserID,
		Reason:         reason,
		Summary:        summary,
	})
	return conv, lead, nil
}

// Resume hands the conversation back from a human to the agent.
func (s *Service) Resume(ctx context.Context, tenantID, conversationID uuid.UUID) (*domain.Conversation, error) {
	return s.transition(ctx, tenantID, conversationID, domain.StatusActive)
}

// UpdateContext overwrites the context summary and interested plan, nil
// fields left untouched.
func (s *Service) UpdateContext(ctx context.Context, tenantID, conversationID uuid.UUID, summary *string, interestedPlanID *uuid.UUID) (*domain.Conversation, error) {
	conv, err := s.store.GetByID(ctx, tenantID, conversationID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if conv.Status.IsTerminal() {
		return nil, apperr.Conflict(fmt.Sprintf("conversation is %s", conv.Status))
	}

	conv, err = s.store.UpdateContext(ctx, tenantID, conversationID, summary, interestedPlanID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return conv, nil
}

// Close ends the conversation as converted or lost.
func (s *Service) Close(ctx context.Context, tenantID, conversationID uuid.UUID, status domain.Status) (*domain.Conversation, error) {
	if status != domain.StatusConverted && status != domain.StatusLost {
		return nil, apperr.Validation(fmt.Sprintf("cannot close a conversation as %q", status))
	}
	conv, err := s.transition(ctx, tenantID, conversationID, status)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, domain.ClosedEvent{
		BaseEvent:      events.NewBaseEvent(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		UserID:         conv.UserID,
		Status:         status,
	})
	return conv, nil
}

func (s *Service) transition(ctx context.Context, tenantID, conversationID uuid.UUID, target domain.Status) (*domain.Conversation, error) {
	conv, err := s.store.GetByID(ctx, tenantID, conversationID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !conv.Status.CanTransition(target) {
		return nil, apperr.Conflict(fmt.Sprintf("cannot move conversation from %s to %s", conv.Status, target))
	}

	conv, err = s.store.UpdateStatus(ctx, tenantID, conversationID, target)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return conv, nil
}

// SweepAbandoned closes every open conversation idle for longer than
// maxIdle and emits an event per closed conversation.
func (s *Service) SweepAbandoned(ctx context.Context, maxIdle time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxIdle)
	closed, err := s.store.MarkAbandonedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for _, conv := range closed {
		s.bus.Publish(ctx, domain.AbandonedEvent{
			BaseEvent:      events.NewBaseEvent(),
			TenantID:       conv.TenantID,
			ConversationID: conv.ID,
		})
	}
	if len(closed) > 0 {
		s.log.Info("abandoned conversations swept", "count", len(closed), "cutoff", cutoff)
	}
	return len(closed), nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrConversationNotFound) {
		return apperr.NotFound("conversation not found")
	}
	return err
}
