// Package domain contains lead qualification types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stage is the lead qualification stage.
type Stage string

const (
	StageCold      Stage = "cold"
	StageWarm      Stage = "warm"
	StageHot       Stage = "hot"
	StageQualified Stage = "qualified"
	StageConverted Stage = "converted"
)

var knownStages = map[Stage]struct{}{
	StageCold:      {},
	StageWarm:      {},
	StageHot:       {},
	StageQualified: {},
	StageConverted: {},
}

// IsKnownStage reports whether value is a valid lead stage token.
func IsKnownStage(value string) bool {
	_, ok := knownStages[Stage(value)]
	return ok
}

// Lead tracks how close a conversation is to a sale. At most one lead
// exists per conversation.
type Lead struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	ConversationID  uuid.UUID
	UserID          uuid.UUID
	Stage           Stage
	Score           int
	Reason          string
	NextAction      string
	Objections      []string
	PreferredPlanID *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
