// Package transport defines the HTTP response shapes for the leads admin
// surface.
package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/luizpibo/WorkHub-AI/internal/leads/domain"
)

type LeadResponse struct {
	ID              uuid.UUID  `json:"id"`
	ConversationID  uuid.UUID  `json:"conversation_id"`
	UserID          uuid.UUID  `json:"user_id"`
	Stage           string     `json:"stage"`
	Score           int        `json:"score"`
	Reason          string     `json:"reason,omitempty"`
	NextAction      string     `json:"next_action,omitempty"`
	Objections      []string   `json:"objections"`
	PreferredPlanID *uuid.UUID `json:"preferred_plan_id,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func ToLeadResponse(l *domain.Lead) LeadResponse {
	objections := l.Objections
	if objections == nil {
		objections = []string{}
	}
	return LeadResponse{
		ID:              l.ID,
		ConversationID:  l.ConversationID,
		UserID:          l.UserID,
		Stage:           string(l.Stage),
		Score:           l.Score,
		Reason:          l.Reason,
		NextAction:      l.NextAction,
		Objections:      objections,
		PreferredPlanID: l.PreferredPlanID,
		UpdatedAt:       l.UpdatedAt,
	}
}

type ListLeadsResponse struct {
	Leads []LeadResponse `json:"leads"`
}
