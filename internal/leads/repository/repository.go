// Package repository persists leads in Postgres. The upsert keyed by
// conversation_id is what guarantees at most one lead per conversation.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luizpibo/WorkHub-AI/internal/leads/domain"
)

var ErrLeadNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, tenant_id, conversation_id, user_id, stage, score, reason, next_action, objections, preferred_plan_id, created_at, updated_at`

func (r *Repository) scanLead(row pgx.Row) (*domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(&l.ID, &l.TenantID, &l.ConversationID, &l.UserID, &l.Stage, &l.Score,
		&l.Reason, &l.NextAction, &l.Objections, &l.PreferredPlanID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("scan lead: %w", err)
	}
	return &l, nil
}

// Upsert inserts the lead or, if one already exists for the conversation,
// overwrites stage, reason and next action while keeping the score
// monotonically non-decreasing.
func (r *Repository) Upsert(ctx context.Context, l *domain.Lead) (*domain.Lead, error) {
	query := `
		INSERT INTO leads (tenant_id, conversation_id, user_id, stage, score, reason, next_action, objections)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (conversation_id) DO UPDATE SET
			stage = EXCLUDED.stage,
			score = GREATEST(leads.score, EXCLUDED.score),
			reason = EXCLUDED.reason,
			next_action = EXCLUDED.next_action,
			updated_at = now()
		RETURNING ` + leadColumns

	objections := l.Objections
	if objections == nil {
		objections = []string{}
	}
	return r.scanLead(r.pool.QueryRow(ctx, query,
		l.TenantID, l.ConversationID, l.UserID, l.Stage, l.Score, l.Reason, l.NextAction, objections))
}

func (r *Repository) GetByConversation(ctx context.Context, tenantID, conversationID uuid.UUID) (*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = $1 AND conversation_id = $2`
	return r.scanLead(r.pool.QueryRow(ctx, query, tenantID, conversationID))
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, stage *domain.Stage, limit, offset int) ([]domain.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE tenant_id = $1 AND ($2::text IS NULL OR stage = $2)
		ORDER BY score DESC, updated_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, tenantID, stage, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		var l domain.Lead
		if err := rows.Scan(&l.ID, &l.TenantID, &l.ConversationID, &l.UserID, &l.Stage, &l.Score,
			&l.Reason, &l.NextAction, &l.Objections, &l.PreferredPlanID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) SetObjections(ctx context.Context, tenantID, conversationID uuid.UUID, objections []string) (*domain.Lead, error) {
	query := `
		UPDATE leads SET objections = $3, updated_at = now()
		WHERE tenant_id = $1 AND conversation_id = $2
		RETURNING ` + leadColumns

	if objections == nil {
		objections = []string{}
	}
	return r.scanLead(r.pool.QueryRow(ctx, query, tenantID, conversationID, objections))
}

func (r *Repository) SetPreferredPlan(ctx context.Context, tenantID, conversationID, planID uuid.UUID) (*domain.Lead, error) {
	query := `
		UPDATE leads SET preferred_plan_id = $3, updated_at = now()
		WHERE tenant_id = $1 AND conversation_id = $2
		RETURNING ` + leadColumns

	return r.scanLead(r.pool.QueryRow(ctx, query, tenantID, conversationID, planID))
}

// MarkConverted closes out the lead when its conversation converts. Score
// only moves up.
func (r *Repository) MarkConverted(ctx context.Context, tenantID, conversationID uuid.UUID) (*domain.Lead, error) {
	query := `
		UPDATE leads SET stage = 'converted', score = GREATEST(score, 100), updated_at = now()
		WHERE tenant_id = $1 AND conversation_id = $2
		RETURNING ` + leadColumns

	return r.scanLead(r.pool.QueryRow(ctx, query, tenantID, conversationID))
}
