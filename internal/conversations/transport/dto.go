// Package transport defines the HTTP request and response shapes for the
// conversations admin surface.
package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
)

type CloseConversationRequest struct {
	Status string `json:"status" validate:"required,oneof=converted lost"`
}

type HandoffRequest struct {
	Reason  string `json:"reason" validate:"required,min=3,max=500"`
	Summary string `json:"summary" validate:"max=2000"`
}

type ConversationResponse struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenant_id"`
	UserID           uuid.UUID  `json:"user_id"`
	Status           string     `json:"status"`
	FunnelStage      string     `json:"funnel_stage"`
	Blocked          bool       `json:"blocked"`
	InterestedPlanID *uuid.UUID `json:"interested_plan_id,omitempty"`
	ContextSummary   string     `json:"context_summary,omitempty"`
	HandoffReason    *string    `json:"handoff_reason,omitempty"`
	HandoffAt        *time.Time `json:"handoff_at,omitempty"`
	LastMessageAt    time.Time  `json:"last_message_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

func ToConversationResponse(c *domain.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:               c.ID,
		TenantID:         c.TenantID,
		UserID:           c.UserID,
		Status:           string(c.Status),
		FunnelStage:      string(c.FunnelStage),
		Blocked:          c.Blocked(),
		InterestedPlanID: c.InterestedPlanID,
		ContextSummary:   c.ContextSummary,
		HandoffReason:    c.HandoffReason,
		HandoffAt:        c.HandoffAt,
		LastMessageAt:    c.LastMessageAt,
		CreatedAt:        c.CreatedAt,
	}
}

type ListConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

type MessageResponse struct {
	ID        uuid.UUID       `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Trace     json.RawMessage `json:"trace,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func ToMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{ID: m.ID, Role: string(m.Role), Content: m.Content, Trace: m.Trace, CreatedAt: m.CreatedAt}
}

type TranscriptResponse struct {
	Conversation ConversationResponse `json:"conversation"`
	Messages     []MessageResponse    `json:"messages"`
}
