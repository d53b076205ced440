// Package transport defines the public chat API shapes.
package transport

import "github.com/google/uuid"

// ChatRequest is one inbound end-user message. ConversationID is optional:
// absent or unknown ids start a fresh conversation.
type ChatRequest struct {
	Message        string     `json:"message" validate:"required,min=1,max=4000"`
	UserKey        string     `json:"user_key" validate:"required,min=1,max=255"`
	UserName       *string    `json:"user_name,omitempty" validate:"omitempty,max=255"`
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
}

// ChatResponse carries the agent's reply plus the conversation state the
// client needs for its next request.
type ChatResponse struct {
	Response       string    `json:"response"`
	ConversationID uuid.UUID `json:"conversation_id"`
	UserID         uuid.UUID `json:"user_id"`
	Status         string    `json:"status"`
	FunnelStage    string    `json:"funnel_stage"`
	Blocked        bool      `json:"blocked"`
	HandoffReason  *string   `json:"handoff_reason,omitempty"`
}
