// Package domain contains the end-user identity bounded context's core types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an end user chatting with a tenant's agent, identified by the
// channel key the tenant's frontend sends (a WhatsApp number, a session ID,
// or whatever the channel provides).
type User struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	UserKey   string
	Name      string
	Phone     *string
	WorkType  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
