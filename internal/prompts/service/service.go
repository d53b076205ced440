// Package service provides business logic for prompt versioning, knowledge
// documents, and the cached read path the agent runtime depends on.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luizpibo/WorkHub-AI/internal/prompts/domain"
	"github.com/luizpibo/WorkHub-AI/internal/prompts/repository"
	"github.com/luizpibo/WorkHub-AI/internal/prompts/transport"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"
	"github.com/luizpibo/WorkHub-AI/platform/cache"
	"github.com/luizpibo/WorkHub-AI/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Store is the data access surface the service needs.
type Store interface {
	CreateVersion(ctx context.Context, tenantID uuid.UUID, promptType domain.PromptType, content string) (domain.PromptTemplate, error)
	ActivateVersion(ctx context.Context, tenantID uuid.UUID, promptType domain.PromptType, version int) (domain.PromptTemplate, error)
	GetActive(ctx context.Context, tenantID uuid.UUID, promptType domain.PromptType) (domain.PromptTemplate, error)
	ListVersions(ctx context.Context, tenantID uuid.UUID, promptType domain.PromptType) ([]domain.PromptTemplate, error)
	CreateDocument(ctx context.Context, d domain.KnowledgeDocument) (domain.KnowledgeDocument, error)
	GetDocument(ctx context.Context, tenantID, id uuid.UUID) (domain.KnowledgeDocument, error)
	ListDocuments(ctx context.Context, tenantID uuid.UUID, docType *domain.DocumentType) ([]domain.KnowledgeDocument, error)
	ListActiveDocuments(ctx context.Context, tenantID uuid.UUID) ([]domain.KnowledgeDocument, error)
	UpdateDocument(ctx context.Context, d domain.KnowledgeDocument) (domain.KnowledgeDocument, error)
	DeleteDocument(ctx context.Context, tenantID, id uuid.UUID) error
}

// Service provides prompt and knowledge management with a TTL cache in
// front of the read path. Every write invalidates the affected cache keys
// before returning, so a tenant saving a new prompt sees it on the very
// next message.
type Service struct {
	repo         Store
	cache        cache.Store
	promptTTL    time.Duration
	knowledgeTTL time.Duration
	sf           singleflight.Group
	log          *logger.Logger
}

// New creates a new prompts service.
func New(repo Store, cacheStore cache.Store, promptTTL, knowledgeTTL time.Duration, log *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		cache:        cacheStore,
		promptTTL:    promptTTL,
		knowledgeTTL: knowledgeTTL,
		log:          log,
	}
}

func promptCacheKey(tenantID uuid.UUID, promptType domain.PromptType) string {
	return fmt.Sprintf("prompt:%s:%s", tenantID, promptType)
}

func knowledgeCacheKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("knowledge:%s", tenantID)
}

// ActivePrompt returns the tenant's active prompt for the given agent type.
// Cache misses are deduplicated so concurrent messages for the same tenant
// trigger a single database read.
func (s *Service) ActivePrompt(ctx context.Context, tenantID uuid.UUID, promptType domain.PromptType) (domain.PromptTemplate, error) {
	key := promptCacheKey(tenantID, promptType)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var prompt domain.PromptTemplate
		if json.Unmarshal(raw, &prompt) == nil {
			return prompt, nil
		}
	}

	value, err, _ := s.sf.Do(key, func() (any, error) {
		prompt, err := s.repo.GetActive(ctx, tenantID, promptType)
		if err != nil {
			return domain.PromptTemplate{}, mapPromptErr(err)
		}
		if raw, err := json.Marshal(prompt); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.promptTTL); err != nil {
				s.log.Warn("prompt cache set failed", "error", err.Error())
			}
		}
		return prompt, nil
	})
	if err != nil {
		return domain.PromptTemplate{}, err
	}
	return value.(domain.PromptTemplate), nil
}

// ActiveKnowledge returns the tenant's active knowledge documents, cached.
func (s *Service) ActiveKnowledge(ctx context.Context, tenantID uuid.UUID) ([]domain.KnowledgeDocument, error) {
	key := knowledgeCacheKey(tenantID)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var docs []domain.KnowledgeDocument
		if json.Unmarshal(raw, &docs) == nil {
			return docs, nil
		}
	}

	value, err, _ := s.sf.Do(key, func() (any, error) {
		docs, err := s.repo.ListActiveDocuments(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(docs); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.knowledgeTTL); err != nil {
				s.log.Warn("knowledge cache set failed", "error", err.Error())
			}
		}
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]domain.KnowledgeDocument), nil
}

// CreateVersion appends a new prompt version, activates it, and invalidates
// the cached prompt for that type.
func (s *Service) CreateVersion(ctx context.Context, tenantID uuid.UUID, req transport.CreatePromptVersionRequest) (transport.PromptResponse, error) {
	promptType := domain.PromptType(req.PromptType)

	prompt, err := s.repo.CreateVersion(ctx, tenantID, promptType, strings.TrimSpace(req.Content))
	if err != nil {
		return transport.PromptResponse{}, err
	}

	s.invalidate(ctx, promptCacheKey(tenantID, promptType))
	s.log.Info("prompt version created",
		"tenant_id", tenantID, "prompt_type", promptType, "version", prompt.Version)

	return mapPromptResponse(prompt), nil
}

// ActivateVersion switches the active version for a prompt type and
// invalidates the cached prompt.
func (s *Service) ActivateVersion(ctx context.Context, tenantID uuid.UUID, req transport.ActivatePromptVersionRequest) (transport.PromptResponse, error) {
	promptType := domain.PromptType(req.PromptType)

	prompt, err := s.repo.ActivateVersion(ctx, tenantID, promptType, req.Version)
	if err != nil {
		return transport.PromptResponse{}, mapPromptErr(err)
	}

	s.invalidate(ctx, promptCacheKey(tenantID, promptType))
	return mapPromptResponse(prompt), nil
}

// ListVersions returns the full version history for a prompt type.
func (s *Service) ListVersions(ctx context.Context, tenantID uuid.UUID, promptType string) (transport.ListPromptsResponse, error) {
	if !domain.IsKnownPromptType(promptType) {
		return transport.ListPromptsResponse{}, apperr.Validation("unknown prompt type")
	}

	prompts, err := s.repo.ListVersions(ctx, tenantID, domain.PromptType(promptType))
	if err != nil {
		return transport.ListPromptsResponse{}, err
	}

	items := make([]transport.PromptResponse, 0, len(prompts))
	for _, p := range prompts {
		items = append(items, mapPromptResponse(p))
	}
	return transport.ListPromptsResponse{Items: items, Total: len(items)}, nil
}

// CreateDocument adds a knowledge document and invalidates the knowledge cache.
func (s *Service) CreateDocument(ctx context.Context, tenantID uuid.UUID, req transport.CreateDocumentRequest) (transport.DocumentResponse, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	doc := domain.KnowledgeDocument{
		ID:           uuid.New(),
		TenantID:     tenantID,
		DocumentType: domain.DocumentType(req.DocumentType),
		Title:        strings.TrimSpace(req.Title),
		Content:      req.Content,
		IsActive:     isActive,
	}

	created, err := s.repo.CreateDocument(ctx, doc)
	if err != nil {
		return transport.DocumentResponse{}, err
	}

	s.invalidate(ctx, knowledgeCacheKey(tenantID))
	return mapDocumentResponse(created), nil
}

// GetDocument returns a single knowledge document.
func (s *Service) GetDocument(ctx context.Context, tenantID, id uuid.UUID) (transport.DocumentResponse, error) {
	doc, err := s.repo.GetDocument(ctx, tenantID, id)
	if err != nil {
		return transport.DocumentResponse{}, mapDocumentErr(err)
	}
	return mapDocumentResponse(doc), nil
}

// ListDocuments returns a tenant's documents, optionally filtered by type.
func (s *Service) ListDocuments(ctx context.Context, tenantID uuid.UUID, docType string) (transport.ListDocumentsResponse, error) {
	var filter *domain.DocumentType
	if docType != "" {
		if !domain.IsKnownDocumentType(docType) {
			return transport.ListDocumentsResponse{}, apperr.Validation("unknown document type")
		}
		dt := domain.DocumentType(docType)
		filter = &dt
	}

	docs, err := s.repo.ListDocuments(ctx, tenantID, filter)
	if err != nil {
		return transport.ListDocumentsResponse{}, err
	}

	items := make([]transport.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, mapDocumentResponse(d))
	}
	return transport.ListDocumentsResponse{Items: items, Total: len(items)}, nil
}

// UpdateDocument applies partial changes and invalidates the knowledge cache.
func (s *Service) UpdateDocument(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateDocumentRequest) (transport.DocumentResponse, error) {
	doc, err := s.repo.GetDocument(ctx, tenantID, id)
	if err != nil {
		return transport.DocumentResponse{}, mapDocumentErr(err)
	}

	if req.DocumentType != nil {
		doc.DocumentType = domain.DocumentType(*req.DocumentType)
	}
	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	if req.IsActive != nil {
		doc.IsActive = *req.IsActive
	}

	updated, err := s.repo.UpdateDocument(ctx, doc)
	if err != nil {
		return transport.DocumentResponse{}, mapDocumentErr(err)
	}

	s.invalidate(ctx, knowledgeCacheKey(tenantID))
	return mapDocumentResponse(updated), nil
}

// DeleteDocument removes a document and invalidates the knowledge cache.
func (s *Service) DeleteDocument(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.DeleteDocument(ctx, tenantID, id); err != nil {
		return mapDocumentErr(err)
	}
	s.invalidate(ctx, knowledgeCacheKey(tenantID))
	return nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		// A stale entry would outlive the write by up to one TTL, so this
		// is worth a loud log line even though the write itself succeeded.
		s.log.Error("cache invalidation failed", "keys", strings.Join(keys, ","), "error", err.Error())
	}
}

func mapPromptErr(err error) error {
	if errors.Is(err, repository.ErrPromptNotFound) {
		return apperr.NotFound("prompt template not found")
	}
	return err
}

func mapDocumentErr(err error) error {
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return apperr.NotFound("knowledge document not found")
	}
	return err
}

func mapPromptResponse(p domain.PromptTemplate) transport.PromptResponse {
	return transport.PromptResponse{
		ID:         p.ID,
		PromptType: string(p.PromptType),
		Version:    p.Version,
		Content:    p.Content,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
	}
}

func mapDocumentResponse(d domain.KnowledgeDocument) transport.DocumentResponse {
	return transport.DocumentResponse{
		ID:           d.ID,
		DocumentType: string(d.DocumentType),
		Title:        d.Title,
		Content:      d.Content,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
