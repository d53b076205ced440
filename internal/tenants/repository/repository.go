// Package repository provides data access for tenants.
package repository

import (
	"context"
	"errors"

	"github.com/luizpibo/WorkHub-AI/internal/tenants/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTenantNotFound is returned when no tenant matches the lookup.
var ErrTenantNotFound = errors.New("tenant not found")

const tenantColumns = `id, name, slug, status, work_type, api_key_hash, api_key_prefix,
	trial_ends_at, settings, created_at, updated_at`

// Repository provides data access for tenants.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new tenant repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTenant(row pgx.Row) (domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Status, &t.WorkType, &t.APIKeyHash,
		&t.APIKeyPrefix, &t.TrialEndsAt, &t.Settings, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Tenant{}, ErrTenantNotFound
	}
	return t, err
}

// Create inserts a new tenant.
func (r *Repository) Create(ctx context.Context, t domain.Tenant) (domain.Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tenants (id, name, slug, status, work_type, api_key_hash, api_key_prefix, trial_ends_at, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+tenantColumns+`
	`, t.ID, t.Name, t.Slug, t.Status, t.WorkType, t.APIKeyHash, t.APIKeyPrefix, t.TrialEndsAt, t.Settings)
	return scanTenant(row)
}

// GetByID retrieves a tenant by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+` FROM tenants WHERE id = $1
	`, id)
	return scanTenant(row)
}

// GetBySlug retrieves a tenant by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+` FROM tenants WHERE slug = $1
	`, slug)
	return scanTenant(row)
}

// List returns all tenants ordered by creation time, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tenantColumns+` FROM tenants ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTenants(rows)
}

func collectTenants(rows pgx.Rows) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// Update persists mutable tenant fields.
func (r *Repository) Update(ctx context.Context, t domain.Tenant) (domain.Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tenants
		SET name = $2, status = $3, work_type = $4, trial_ends_at = $5, settings = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+tenantColumns+`
	`, t.ID, t.Name, t.Status, t.WorkType, t.TrialEndsAt, t.Settings)
	return scanTenant(row)
}

// UpdateCredential replaces the stored API key hash and prefix.
func (r *Repository) UpdateCredential(ctx context.Context, id uuid.UUID, keyHash, keyPrefix string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants SET api_key_hash = $2, api_key_prefix = $3, updated_at = now()
		WHERE id = $1
	`, id, keyHash, keyPrefix)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// Delete removes a tenant and, via cascading constraints, everything it owns.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}
