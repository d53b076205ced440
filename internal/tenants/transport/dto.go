// Package transport defines the tenant module's request and response DTOs.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateTenantRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=200"`
	Slug        string         `json:"slug" validate:"required,min=2,max=60,slug"`
	WorkType    string         `json:"workType" validate:"omitempty,oneof=freelancer startup company other"`
	TrialDays   int            `json:"trialDays" validate:"omitempty,min=1,max=365"`
	Settings    map[string]any `json:"settings,omitempty"`
}

type UpdateTenantRequest struct {
	Name        *string         `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Status      *string         `json:"status,omitempty" validate:"omitempty,oneof=active trial suspended cancelled"`
	WorkType    *string         `json:"workType,omitempty" validate:"omitempty,oneof=freelancer startup company other"`
	TrialEndsAt *time.Time      `json:"trialEndsAt,omitempty"`
	Settings    *map[string]any `json:"settings,omitempty"`
}

type TenantResponse struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	Status       string         `json:"status"`
	WorkType     string         `json:"workType"`
	APIKeyPrefix string         `json:"apiKeyPrefix"`
	TrialEndsAt  *time.Time     `json:"trialEndsAt,omitempty"`
	Settings     map[string]any `json:"settings,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CreatedTenantResponse carries the plaintext API key. It is returned exactly
// once, on creation or rotation; only the bcrypt hash is stored.
type CreatedTenantResponse struct {
	TenantResponse
	APIKey string `json:"apiKey"`
}

type ListTenantsResponse struct {
	Items []TenantResponse `json:"items"`
	Total int              `json:"total"`
}
