// Package domain contains the conversation bounded context's core types and
// the status state machine.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a conversation.
type Status string

const (
	StatusActive        Status = "active"
	StatusAwaitingHuman Status = "awaiting_human"
	StatusConverted     Status = "converted"
	StatusLost          Status = "lost"
	StatusAbandoned     Status = "abandoned"
)

var knownStatuses = map[Status]struct{}{
	StatusActive:        {},
	StatusAwaitingHuman: {},
	StatusConverted:     {},
	StatusLost:          {},
	StatusAbandoned:     {},
}

// IsKnownStatus reports whether value is a valid conversation status token.
func IsKnownStatus(value string) bool {
	_, ok := knownStatuses[Status(value)]
	return ok
}

// IsTerminal reports whether the status accepts no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusConverted, StatusLost, StatusAbandoned:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to target is allowed.
// Terminal states are sinks. Active and awaiting_human can reach every
// other state; awaiting_human returning to active is how a human hands
// the conversation back to the agent. A repeat handoff is not a
// transition, see AcceptsHandoff.
func (s Status) CanTransition(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	if s == target {
		return false
	}
	_, known := knownStatuses[target]
	return known
}

// AcceptsHandoff reports whether a handoff request may be applied in this
// status. Any non-terminal conversation accepts one, including a
// conversation already awaiting a human: the repeat re-records the reason
// and re-scores the lead.
func (s Status) AcceptsHandoff() bool {
	return !s.IsTerminal()
}

// FunnelStage tracks where the buyer is in the sales funnel. Stages are
// advisory: the agent may move a conversation to any stage, including
// backwards, because buyers do not follow the funnel in order either.
type FunnelStage string

const (
	StageAwareness     FunnelStage = "awareness"
	StageInterest      FunnelStage = "interest"
	StageConsideration FunnelStage = "consideration"
	StageNegotiation   FunnelStage = "negotiation"
	StageClosedWon     FunnelStage = "closed_won"
	StageClosedLost    FunnelStage = "closed_lost"
)

var knownFunnelStages = map[FunnelStage]struct{}{
	StageAwareness:     {},
	StageInterest:      {},
	StageConsideration: {},
	StageNegotiation:   {},
	StageClosedWon:     {},
	StageClosedLost:    {},
}

// IsKnownFunnelStage reports whether value is a valid funnel stage token.
func IsKnownFunnelStage(value string) bool {
	_, ok := knownFunnelStages[FunnelStage(value)]
	return ok
}

// MessageRole identifies who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

var knownRoles = map[MessageRole]struct{}{
	RoleUser:      {},
	RoleAssistant: {},
	RoleSystem:    {},
}

// IsKnownRole reports whether value is a valid message role token.
func IsKnownRole(value string) bool {
	_, ok := knownRoles[MessageRole(value)]
	return ok
}

// Conversation is one thread between an end user and a tenant's agent.
type Conversation struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	UserID           uuid.UUID
	Status           Status
	FunnelStage      FunnelStage
	InterestedPlanID *uuid.UUID
	ContextSummary   string
	HandoffReason    *string
	HandoffAt        *time.Time
	LastMessageAt    time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Blocked reports whether the agent is gated off this conversation.
func (c *Conversation) Blocked() bool {
	return c.Status == StatusAwaitingHuman
}

// Message is one turn in a conversation. TenantID is denormalized from the
// conversation so tenant-scoped reads never join. Trace holds the agent's
// tool invocation record for assistant turns, opaque to this package.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	TenantID       uuid.UUID
	Role           MessageRole
	Content        string
	Trace          json.RawMessage
	CreatedAt      time.Time
}
