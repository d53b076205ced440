// Package transport defines the prompts module's request and response DTOs.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreatePromptVersionRequest struct {
	PromptType string `json:"promptType" validate:"required,oneof=sales_agent admin_agent analyst_agent"`
	Content    string `json:"content" validate:"required,min=1,max=50000"`
}

type ActivatePromptVersionRequest struct {
	PromptType string `json:"promptType" validate:"required,oneof=sales_agent admin_agent analyst_agent"`
	Version    int    `json:"version" validate:"required,min=1"`
}

type PromptResponse struct {
	ID         uuid.UUID `json:"id"`
	PromptType string    `json:"promptType"`
	Version    int       `json:"version"`
	Content    string    `json:"content"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ListPromptsResponse struct {
	Items []PromptResponse `json:"items"`
	Total int              `json:"total"`
}

type CreateDocumentRequest struct {
	DocumentType string `json:"documentType" validate:"required,oneof=product faq objections scripts"`
	Title        string `json:"title" validate:"required,min=1,max=300"`
	Content      string `json:"content" validate:"required,min=1,max=100000"`
	IsActive     *bool  `json:"isActive,omitempty"`
}

type UpdateDocumentRequest struct {
	DocumentType *string `json:"documentType,omitempty" validate:"omitempty,oneof=product faq objections scripts"`
	Title        *string `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Content      *string `json:"content,omitempty" validate:"omitempty,min=1,max=100000"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

type DocumentResponse struct {
	ID           uuid.UUID `json:"id"`
	DocumentType string    `json:"documentType"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ListDocumentsResponse struct {
	Items []DocumentResponse `json:"items"`
	Total int                `json:"total"`
}
