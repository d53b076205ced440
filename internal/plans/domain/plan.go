// Package domain contains the plan catalog's core types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// BillingCycle is how often a plan renews.
type BillingCycle string

const (
	BillingDaily   BillingCycle = "daily"
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

var knownBillingCycles = map[BillingCycle]struct{}{
	BillingDaily:   {},
	BillingMonthly: {},
	BillingYearly:  {},
}

// IsKnownBillingCycle reports whether value is a valid billing cycle token.
func IsKnownBillingCycle(value string) bool {
	_, ok := knownBillingCycles[BillingCycle(value)]
	return ok
}

// Plan is a product a tenant sells through the sales agent, such as a
// coworking membership or a day pass.
type Plan struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	Description  string
	PriceCents   int64
	BillingCycle BillingCycle
	Features     []string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
