// Package repository provides data access for end users.
package repository

import (
	"context"
	"errors"

	"github.com/luizpibo/WorkHub-AI/internal/identity/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, tenant_id, user_key, name, phone, work_type, created_at, updated_at`

// Repository provides data access for end users.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new identity repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.TenantID, &u.UserKey, &u.Name, &u.Phone, &u.WorkType, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, u domain.User) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, tenant_id, user_key, name, phone, work_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns+`
	`, u.ID, u.TenantID, u.UserKey, u.Name, u.Phone, u.WorkType)
	return scanUser(row)
}

// GetByKey retrieves a user by its exact channel key within a tenant.
func (r *Repository) GetByKey(ctx context.Context, tenantID uuid.UUID, userKey string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE tenant_id = $1 AND user_key = $2
	`, tenantID, userKey)
	return scanUser(row)
}

// GetByID retrieves a user scoped to its tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	return scanUser(row)
}

// SearchByName returns users whose name contains the fragment, newest first.
// Matching is case-insensitive substring, same as the manual lookups tenant
// staff do in the dashboard.
func (r *Repository) SearchByName(ctx context.Context, tenantID uuid.UUID, nameFragment string) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE tenant_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY created_at DESC
	`, tenantID, nameFragment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update persists mutable user fields.
func (r *Repository) Update(ctx context.Context, u domain.User) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $3, phone = $4, work_type = $5, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+userColumns+`
	`, u.ID, u.TenantID, u.Name, u.Phone, u.WorkType)
	return scanUser(row)
}
