package domain

import (
	"github.com/google/uuid"

	"github.com/luizpibo/WorkHub-AI/platform/events"
)

const (
	EventHandedOff = "conversation.handed_off"
	EventClosed    = "conversation.closed"
	EventAbandoned = "conversation.abandoned"
)

// HandedOffEvent fires when a conversation is escalated to a human operator.
type HandedOffEvent struct {
	events.BaseEvent
	TenantID       uuid.UUID `json:"tenant_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	UserID         uuid.UUID `json:"user_id"`
	Reason         string    `json:"reason"`
	Summary        string    `json:"summary,omitempty"`
}

func (e HandedOffEvent) EventName() string { return EventHandedOff }

// ClosedEvent fires when a conversation reaches converted or lost.
type ClosedEvent struct {
	events.BaseEvent
	TenantID       uuid.UUID `json:"tenant_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	UserID         uuid.UUID `json:"user_id"`
	Status         Status    `json:"status"`
}

func (e ClosedEvent) EventName() string { return EventClosed }

// AbandonedEvent fires for each conversation closed by the inactivity sweep.
type AbandonedEvent struct {
	events.BaseEvent
	TenantID       uuid.UUID `json:"tenant_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
}

func (e AbandonedEvent) EventName() string { return EventAbandoned }
