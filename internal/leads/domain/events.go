package domain

import (
	"github.com/google/uuid"

	"github.com/luizpibo/WorkHub-AI/platform/events"
)

const EventQualified = "lead.qualified"

// QualifiedEvent fires when a lead reaches hot or qualified, which is when
// the tenant's sales team should jump in.
type QualifiedEvent struct {
	events.BaseEvent
	TenantID       uuid.UUID `json:"tenant_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	UserID         uuid.UUID `json:"user_id"`
	Stage          Stage     `json:"stage"`
	Score          int       `json:"score"`
	Reason         string    `json:"reason"`
}

func (e QualifiedEvent) EventName() string { return EventQualified }
