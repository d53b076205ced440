// Package domain contains the tenant bounded context's core types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a tenant account.
type Status string

const (
	StatusActive    Status = "active"
	StatusTrial     Status = "trial"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

var knownStatuses = map[Status]struct{}{
	StatusActive:    {},
	StatusTrial:     {},
	StatusSuspended: {},
	StatusCancelled: {},
}

// IsKnownStatus reports whether value is a valid tenant status token.
func IsKnownStatus(value string) bool {
	_, ok := knownStatuses[Status(value)]
	return ok
}

// WorkType describes the kind of business a tenant runs.
type WorkType string

const (
	WorkTypeFreelancer WorkType = "freelancer"
	WorkTypeStartup    WorkType = "startup"
	WorkTypeCompany    WorkType = "company"
	WorkTypeOther      WorkType = "other"
)

var knownWorkTypes = map[WorkType]struct{}{
	WorkTypeFreelancer: {},
	WorkTypeStartup:    {},
	WorkTypeCompany:    {},
	WorkTypeOther:      {},
}

// IsKnownWorkType reports whether value is a valid work type token.
func IsKnownWorkType(value string) bool {
	_, ok := knownWorkTypes[WorkType(value)]
	return ok
}

// Tenant is a customer account. Every other record in the system hangs off
// a tenant ID, and all queries must be scoped by it.
type Tenant struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	Status       Status
	WorkType     WorkType
	APIKeyHash   string
	APIKeyPrefix string
	TrialEndsAt  *time.Time
	Settings     map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanServe reports whether the tenant may use the chat surface at the given
// instant. Suspended and cancelled tenants never can; trial tenants can only
// until their trial expires. A trial with no end date is treated as open.
func (t Tenant) CanServe(now time.Time) bool {
	switch t.Status {
	case StatusActive:
		return true
	case StatusTrial:
		return t.TrialEndsAt == nil || now.Before(*t.TrialEndsAt)
	default:
		return false
	}
}
