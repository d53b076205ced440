package service

import (
	"context"
	"testing"
	"time"

	"github.com/luizpibo/WorkHub-AI/internal/prompts/domain"
	"github.com/luizpibo/WorkHub-AI/internal/prompts/repository"
	"github.com/luizpibo/WorkHub-AI/internal/prompts/transport"
	"github.com/luizpibo/WorkHub-AI/platform/cache"
	"github.com/luizpibo/WorkHub-AI/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	prompts     []domain.PromptTemplate
	documents   map[uuid.UUID]domain.KnowledgeDocument
	activeReads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{documents: make(map[uuid.UUID]domain.KnowledgeDocument)}
}

func (f *fakeStore) CreateVersion(_ context.Context, tenantID uuid.UUID, promptType domain.PromptType, content string) (domain.PromptTemplate, error) {
	maxVersion := 0
	for i := range f.prompts {
		p := &f.prompts[i]
		if p.TenantID == tenantID && p.PromptType == promptType {
			if p.Version > maxVersion {
				maxVersion = p.Version
			}
			p.IsActive = false
		}
	}
	prompt := domain.PromptTemplate{
		ID:         uuid.New(),
		TenantID:   tenantID,
		PromptType: promptType,
		Version:    maxVersion + 1,
		Content:    content,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	f.prompts = append(f.prompts, prompt)
	return prompt, nil
}

func (f *fakeStore) ActivateVersion(_ context.Context, tenantID uuid.UUID, promptType domain.PromptType, version int) (domain.PromptTemplate, error) {
	var found *domain.PromptTemplate
	for i := range f.prompts {
		p := &f.prompts[i]
		if p.TenantID == tenantID && p.PromptType == promptType {
			p.IsActive = p.Version == version
			if p.IsActive {
				found = p
			}
		}
	}
	if found == nil {
		return domain.PromptTemplate{}, repository.ErrPromptNotFound
	}
	return *found, nil
}

func (f *fakeStore) GetActive(_ context.Context, tenantID uuid.UUID, promptType domain.PromptType) (domain.PromptTemplate, error) {
	f.activeReads++
	for _, p := range f.prompts {
		if p.TenantID == tenantID && p.PromptType == promptType && p.IsActive {
			return p, nil
		}
	}
	return domain.PromptTemplate{}, repository.ErrPromptNotFound
}

func (f *fakeStore) ListVersions(_ context.Context, tenantID uuid.UUID, promptType domain.PromptType) ([]domain.PromptTemplate, error) {
	var out []domain.PromptTemplate
	for _, p := range f.prompts {
		if p.TenantID == tenantID && p.PromptType == promptType {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateDocument(_ context.Context, d domain.KnowledgeDocument) (domain.KnowledgeDocument, error) {
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	f.documents[d.ID] = d
	return d, nil
}

func (f *fakeStore) GetDocument(_ context.Context, tenantID, id uuid.UUID) (domain.KnowledgeDocument, error) {
	d, ok := f.documents[id]
	if !ok || d.TenantID != tenantID {
		return domain.KnowledgeDocument{}, repository.ErrDocumentNotFound
	}
	return d, nil
}

func (f *fakeStore) ListDocuments(_ context.Context, tenantID uuid.UUID, docType *domain.DocumentType) ([]domain.KnowledgeDocument, error) {
	var out []domain.KnowledgeDocument
	for _, d := range f.documents {
		if d.TenantID != tenantID {
			continue
		}
		if docType != nil && d.DocumentType != *docType {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) ListActiveDocuments(_ context.Context, tenantID uuid.UUID) ([]domain.KnowledgeDocument, error) {
	var out []domain.KnowledgeDocument
	for _, d := range f.documents {
		if d.TenantID == tenantID && d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateDocument(_ context.Context, d domain.KnowledgeDocument) (domain.KnowledgeDocument, error) {
	if _, ok := f.documents[d.ID]; !ok {
		return domain.KnowledgeDocument{}, repository.ErrDocumentNotFound
	}
	d.UpdatedAt = time.Now()
	f.documents[d.ID] = d
	return d, nil
}

func (f *fakeStore) DeleteDocument(_ context.Context, tenantID, id uuid.UUID) error {
	d, ok := f.documents[id]
	if !ok || d.TenantID != tenantID {
		return repository.ErrDocumentNotFound
	}
	delete(f.documents, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	memCache := cache.NewMemoryStore()
	t.Cleanup(func() { memCache.Close() })
	return New(store, memCache, 10*time.Minute, 30*time.Minute, logger.New("development")), store
}

func TestCreateVersionIncrements(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	first, err := svc.CreateVersion(ctx, tenantID, transport.CreatePromptVersionRequest{
		PromptType: "sales_agent", Content: "v1",
	})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	second, err := svc.CreateVersion(ctx, tenantID, transport.CreatePromptVersionRequest{
		PromptType: "sales_agent", Content: "v2",
	})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}

	if first.Version != 1 || second.Version != 2 {
		t.Errorf("versions = %d, %d, want 1, 2", first.Version, second.Version)
	}
	if !second.IsActive {
		t.Error("newest version should be active")
	}

	active, err := svc.ActivePrompt(ctx, tenantID, domain.PromptSalesAgent)
	if err != nil {
		t.Fatalf("ActivePrompt: %v", err)
	}
	if active.Content != "v2" {
		t.Errorf("active content = %q, want v2", active.Content)
	}
}

func TestActivePromptIsCached(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	if _, err := svc.CreateVersion(ctx, tenantID, transport.CreatePromptVersionRequest{
		PromptType: "sales_agent", Content: "v1",
	}); err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}

	for range 3 {
		if _, err := svc.ActivePrompt(ctx, tenantID, domain.PromptSalesAgent); err != nil {
			t.Fatalf("ActivePrompt: %v", err)
		}
	}

	if store.activeReads != 1 {
		t.Errorf("database reads = %d, want 1 (cached after first)", store.activeReads)
	}
}

func TestCreateVersionInvalidatesCache(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	if _, err := svc.CreateVersion(ctx, tenantID, transport.CreatePromptVersionRequest{
		PromptType: "sales_agent", Content: "v1",
	}); err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	if _, err := svc.ActivePrompt(ctx, tenantID, domain.PromptSalesAgent); err != nil {
		t.Fatalf("ActivePrompt: %v", err)
	}

	if _, err := svc.CreateVersion(ctx, tenantID, transport.CreatePromptVersionRequest{
		PromptType: "sales_agent", Content: "v2",
	}); err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}

	active, err := svc.ActivePrompt(ctx, tenantID, domain.PromptSalesAgent)
	if err != nil {
		t.Fatalf("ActivePrompt: %v", err)
	}
	if active.Content != "v2" {
		t.Errorf("active prompt after new version = %q, want v2 (stale cache)", active.Content)
	}
}

func TestActivateOlderVersion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	for _, content := range []string{"v1", "v2"} {
		if _, err := svc.CreateVersion(ctx, tenantID, transport.CreatePromptVersionRequest{
			PromptType: "sales_agent", Content: content,
		}); err != nil {
			t.Fatalf("CreateVersion: %v", err)
		}
	}

	activated, err := svc.ActivateVersion(ctx, tenantID, transport.ActivatePromptVersionRequest{
		PromptType: "sales_agent", Version: 1,
	})
	if err != nil {
		t.Fatalf("ActivateVersion: %v", err)
	}
	if activated.Version != 1 {
		t.Errorf("activated version = %d, want 1", activated.Version)
	}

	active, err := svc.ActivePrompt(ctx, tenantID, domain.PromptSalesAgent)
	if err != nil {
		t.Fatalf("ActivePrompt: %v", err)
	}
	if active.Content != "v1" {
		t.Errorf("active content = %q, want v1", active.Content)
	}
}

func TestKnowledgeCacheInvalidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	created, err := svc.CreateDocument(ctx, tenantID, transport.CreateDocumentRequest{
		DocumentType: "faq", Title: "FAQ", Content: "Q&A",
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	docs, err := svc.ActiveKnowledge(ctx, tenantID)
	if err != nil {
		t.Fatalf("ActiveKnowledge: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("active docs = %d, want 1", len(docs))
	}

	inactive := false
	if _, err := svc.UpdateDocument(ctx, tenantID, created.ID, transport.UpdateDocumentRequest{
		IsActive: &inactive,
	}); err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}

	docs, err = svc.ActiveKnowledge(ctx, tenantID)
	if err != nil {
		t.Fatalf("ActiveKnowledge: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("active docs after deactivation = %d, want 0 (stale cache)", len(docs))
	}
}
