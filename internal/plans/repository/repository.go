// Package repository provides data access for plans.
package repository

import (
	"context"
	"errors"

	"github.com/luizpibo/WorkHub-AI/internal/plans/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPlanNotFound is returned when no plan matches the lookup.
var ErrPlanNotFound = errors.New("plan not found")

const planColumns = `id, tenant_id, name, description, price_cents, billing_cycle,
	features, is_active, created_at, updated_at`

// Repository provides data access for plans.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new plan repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPlan(row pgx.Row) (domain.Plan, error) {
	var p domain.Plan
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Description, &p.PriceCents,
		&p.BillingCycle, &p.Features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Plan{}, ErrPlanNotFound
	}
	return p, err
}

// Create inserts a new plan.
func (r *Repository) Create(ctx context.Context, p domain.Plan) (domain.Plan, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO plans (id, tenant_id, name, description, price_cents, billing_cycle, features, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+planColumns+`
	`, p.ID, p.TenantID, p.Name, p.Description, p.PriceCents, p.BillingCycle, p.Features, p.IsActive)
	return scanPlan(row)
}

// GetByID retrieves a plan scoped to its tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Plan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+planColumns+` FROM plans WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	return scanPlan(row)
}

// List returns all plans for a tenant, active or not.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlans(rows)
}

// ListActive returns the plans the sales agent may offer, cheapest first.
func (r *Repository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]domain.Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE tenant_id = $1 AND is_active
		ORDER BY price_cents ASC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlans(rows)
}

func collectPlans(rows pgx.Rows) ([]domain.Plan, error) {
	var plans []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Update persists mutable plan fields.
func (r *Repository) Update(ctx context.Context, p domain.Plan) (domain.Plan, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE plans
		SET name = $3, description = $4, price_cents = $5, billing_cycle = $6,
		    features = $7, is_active = $8, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+planColumns+`
	`, p.ID, p.TenantID, p.Name, p.Description, p.PriceCents, p.BillingCycle, p.Features, p.IsActive)
	return scanPlan(row)
}

// Delete removes a plan.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM plans WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}
