// Package transport defines the plan module's request and response DTOs.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreatePlanRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=200"`
	Description  string   `json:"description" validate:"omitempty,max=2000"`
	PriceCents   int64    `json:"priceCents" validate:"gte=0"`
	BillingCycle string   `json:"billingCycle" validate:"required,oneof=daily monthly yearly"`
	Features     []string `json:"features,omitempty" validate:"omitempty,dive,max=200"`
	IsActive     *bool    `json:"isActive,omitempty"`
}

type UpdatePlanRequest struct {
	Name         *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	PriceCents   *int64    `json:"priceCents,omitempty" validate:"omitempty,gte=0"`
	BillingCycle *string   `json:"billingCycle,omitempty" validate:"omitempty,oneof=daily monthly yearly"`
	Features     *[]string `json:"features,omitempty" validate:"omitempty,dive,max=200"`
	IsActive     *bool     `json:"isActive,omitempty"`
}

type PlanResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PriceCents   int64     `json:"priceCents"`
	BillingCycle string    `json:"billingCycle"`
	Features     []string  `json:"features"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ListPlansResponse struct {
	Items []PlanResponse `json:"items"`
	Total int            `json:"total"`
}
