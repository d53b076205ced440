// Package domain contains the prompt and knowledge bounded context's core types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromptType identifies which agent a prompt template drives.
type PromptType string

const (
	PromptSalesAgent   PromptType = "sales_agent"
	PromptAdminAgent   PromptType = "admin_agent"
	PromptAnalystAgent PromptType = "analyst_agent"
)

var knownPromptTypes = map[PromptType]struct{}{
	PromptSalesAgent:   {},
	PromptAdminAgent:   {},
	PromptAnalystAgent: {},
}

// IsKnownPromptType reports whether value is a valid prompt type token.
func IsKnownPromptType(value string) bool {
	_, ok := knownPromptTypes[PromptType(value)]
	return ok
}

// DocumentType categorizes a knowledge document.
type DocumentType string

const (
	DocProduct    DocumentType = "product"
	DocFAQ        DocumentType = "faq"
	DocObjections DocumentType = "objections"
	DocScripts    DocumentType = "scripts"
)

var knownDocumentTypes = map[DocumentType]struct{}{
	DocProduct:    {},
	DocFAQ:        {},
	DocObjections: {},
	DocScripts:    {},
}

// IsKnownDocumentType reports whether value is a valid document type token.
func IsKnownDocumentType(value string) bool {
	_, ok := knownDocumentTypes[DocumentType(value)]
	return ok
}

// PromptTemplate is one version of a tenant's agent prompt. Versions are
// append-only; activating a version deactivates its siblings of the same type.
type PromptTemplate struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	PromptType PromptType
	Version    int
	Content    string
	IsActive   bool
	CreatedAt  time.Time
}

// KnowledgeDocument is tenant-authored reference material injected into the
// sales agent's context.
type KnowledgeDocument struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	DocumentType DocumentType
	Title        string
	Content      string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
