// Package repository provides data access for prompt templates and
// knowledge documents.
package repository

import (
	"context"
	"errors"

	"github.com/luizpibo/WorkHub-AI/internal/prompts/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrPromptNotFound is returned when no prompt template matches the lookup.
	ErrPromptNotFound = errors.New("prompt template not found")
	// ErrDocumentNotFound is returned when no knowledge document matches the lookup.
	ErrDocumentNotFound = errors.New("knowledge document not found")
)

const promptColumns = `id, tenant_id, prompt_type, version, content, is_active, created_at`

const documentColumns = `id, tenant_id, document_type, title, content, is_active, created_at, updated_at`

// Repository provides data access for prompts and knowledge documents.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new prompts repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPrompt(row pgx.Row) (domain.PromptTemplate, error) {
	var p domain.PromptTemplate
	err := row.Scan(&p.ID, &p.TenantID, &p.PromptType, &p.Version, &p.Content, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PromptTemplate{}, ErrPromptNotFound
	}
	return p, err
}

// CreateVersion inserts a new prompt version and deactivates all prior
// versions of the same type in a single transaction. The new version number
// is one above the tenant's current maximum for that type.
func (r *Repository) CreateVersion(ctx context.Context, tenantID uuid.UUID, promptType domain.PromptType, content string) (domain.PromptTemplate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.PromptTemplate{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE prompt_templates SET is_active = false
		WHERE tenant_id = $1 AND prompt_type = $2 AND is_active
	`, tenantID, promptType); err != nil {
		return domain.PromptTemplate{}, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO prompt_templates (id, tenant_id, prompt_type, version, content, is_active)
		SELECT $1, $2, $3, COALESCE(MAX(version), 0) + 1, $4, true
		FROM prompt_templates
		WHERE tenant_id = $2 AND prompt_type = $3
		RETURNING `+promptColumns+`
	`, uuid.New(), tenantID, promptType, content)

	prompt, err := scanPrompt(row)
	if err != nil {
		return domain.PromptTemplate{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.PromptTemplate{}, err
	}
	return prompt, nil
}

// ActivateVersion marks the given version active and its siblings inactive.
func (r *Repository) ActivateVersion(ctx context.Context, tenantID uuid.UUID, promptType domain.PromptType, version int) (domain.PromptTemplate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.PromptTemplate{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE prompt_templates SET is_active = false
		WHERE tenant_id = $1 AND prompt_type = $2 AND is_active
	`, tenantID, promptType); err != nil {
		return domain.PromptTemplate{}, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE prompt_templates SET is_active = true
		WHERE tenant_id = $1 AND prompt_type = $2 AND version = $3
		RETURNING `+promptColumns+`
	`, tenantID, promptType, version)

	prompt, err := scanPrompt(row)
	if err != nil {
		return domain.PromptTemplate{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.PromptTemplate{}, err
	}
	return prompt, nil
}

// GetActive returns the active prompt version for a tenant and type.
func (r *Repository) GetActive(ctx context.Context, tenantID uuid.UUID, promptType domain.PromptType) (domain.PromptTemplate, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+promptColumns+` FROM prompt_templates
		WHERE tenant_id = $1 AND prompt_type = $2 AND is_active
	`, tenantID, promptType)
	return scanPrompt(row)
}

// ListVersions returns all versions of a prompt type, newest first.
func (r *Repository) ListVersions(ctx context.Context, tenantID uuid.UUID, promptType domain.PromptType) ([]domain.PromptTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+promptColumns+` FROM prompt_templates
		WHERE tenant_id = $1 AND prompt_type = $2
		ORDER BY version DESC
	`, tenantID, promptType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []domain.PromptTemplate
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

func scanDocument(row pgx.Row) (domain.KnowledgeDocument, error) {
	var d domain.KnowledgeDocument
	err := row.Scan(&d.ID, &d.TenantID, &d.DocumentType, &d.Title, &d.Content, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.KnowledgeDocument{}, ErrDocumentNotFound
	}
	return d, err
}

// CreateDocument inserts a new knowledge document.
func (r *Repository) CreateDocument(ctx context.Context, d domain.KnowledgeDocument) (domain.KnowledgeDocument, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO knowledge_documents (id, tenant_id, document_type, title, content, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+documentColumns+`
	`, d.ID, d.TenantID, d.DocumentType, d.Title, d.Content, d.IsActive)
	return scanDocument(row)
}

// GetDocument retrieves a knowledge document scoped to its tenant.
func (r *Repository) GetDocument(ctx context.Context, tenantID, id uuid.UUID) (domain.KnowledgeDocument, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM knowledge_documents
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	return scanDocument(row)
}

// ListDocuments returns a tenant's documents, optionally filtered by type.
func (r *Repository) ListDocuments(ctx context.Context, tenantID uuid.UUID, docType *domain.DocumentType) ([]domain.KnowledgeDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM knowledge_documents WHERE tenant_id = $1`
	args := []any{tenantID}
	if docType != nil {
		query += ` AND document_type = $2`
		args = append(args, *docType)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.KnowledgeDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ListActiveDocuments returns the documents injected into the agent context.
func (r *Repository) ListActiveDocuments(ctx context.Context, tenantID uuid.UUID) ([]domain.KnowledgeDocument, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM knowledge_documents
		WHERE tenant_id = $1 AND is_active
		ORDER BY document_type, created_at
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.KnowledgeDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// UpdateDocument persists mutable document fields.
func (r *Repository) UpdateDocument(ctx context.Context, d domain.KnowledgeDocument) (domain.KnowledgeDocument, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE knowledge_documents
		SET document_type = $3, title = $4, content = $5, is_active = $6, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+documentColumns+`
	`, d.ID, d.TenantID, d.DocumentType, d.Title, d.Content, d.IsActive)
	return scanDocument(row)
}

// DeleteDocument removes a knowledge document.
func (r *Repository) DeleteDocument(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM knowledge_documents WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
