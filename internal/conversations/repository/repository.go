// Package repository persists conversations and messages in Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
)

var ErrConversationNotFound = errors.New("conversation not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const conversationColumns = `id, tenant_id, user_id, status, funnel_stage, interested_plan_id, context_summary, handoff_reason, handoff_at, last_message_at, created_at, updated_at`

func (r *Repository) scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var c domain.Conversation
	err := row.Scan(&c.ID, &c.TenantID, &c.UserID, &c.Status, &c.FunnelStage,
		&c.InterestedPlanID, &c.ContextSummary, &c.HandoffReason, &c.HandoffAt,
		&c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return &c, nil
}

func (r *Repository) Create(ctx context.Context, c *domain.Conversation) (*domain.Conversation, error) {
	query := `
		INSERT INTO conversations (tenant_id, user_id, status, funnel_stage, last_message_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING ` + conversationColumns

	return r.scanConversation(r.pool.QueryRow(ctx, query, c.TenantID, c.UserID, c.Status, c.FunnelStage))
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE tenant_id = $1 AND id = $2`
	return r.scanConversation(r.pool.QueryRow(ctx, query, tenantID, id))
}

// GetActiveForUser returns the user's most recent non-terminal conversation.
func (r *Repository) GetActiveForUser(ctx context.Context, tenantID, userID uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE tenant_id = $1 AND user_id = $2 AND status IN ('active', 'awaiting_human')
		ORDER BY last_message_at DESC
		LIMIT 1`

	return r.scanConversation(r.pool.QueryRow(ctx, query, tenantID, userID))
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, status *domain.Status, limit, offset int) ([]domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE tenant_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY last_message_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, tenantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.TenantID, &c.UserID, &c.Status, &c.FunnelStage,
			&c.InterestedPlanID, &c.ContextSummary, &c.HandoffReason, &c.HandoffAt,
			&c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.Status) (*domain.Conversation, error) {
	query := `
		UPDATE conversations
		SET status = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + conversationColumns

	return r.scanConversation(r.pool.QueryRow(ctx, query, tenantID, id, status))
}

// SetHandoff flips the conversation to awaiting_human, recording the reason,
// the handoff time, and the agent's summary of the conversation so far. The
// summary always replaces the stored context, even when empty.
func (r *Repository) SetHandoff(ctx context.Context, tenantID, id uuid.UUID, reason, summary string) (*domain.Conversation, error) {
	query := `
		UPDATE conversations
		SET status = 'awaiting_human', handoff_reason = $3, handoff_at = now(),
		    context_summary = $4, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + conversationColumns

	return r.scanConversation(r.pool.QueryRow(ctx, query, tenantID, id, reason, summary))
}

// UpdateContext overwrites the summary and interested plan when provided.
func (r *Repository) UpdateContext(ctx context.Context, tenantID, id uuid.UUID, summary *string, interestedPlanID *uuid.UUID) (*domain.Conversation, error) {
	query := `
		UPDATE conversations
		SET context_summary = COALESCE($3, context_summary),
		    interested_plan_id = COALESCE($4, interested_plan_id),
		    updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + conversationColumns

	return r.scanConversation(r.pool.QueryRow(ctx, query, tenantID, id, summary, interestedPlanID))
}

func (r *Repository) UpdateStage(ctx context.Context, tenantID, id uuid.UUID, stage domain.FunnelStage) (*domain.Conversation, error) {
	query := `
		UPDATE conversations
		SET funnel_stage = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + conversationColumns

	return r.scanConversation(r.pool.QueryRow(ctx, query, tenantID, id, stage))
}

// AppendMessage inserts a message and bumps the conversation's
// last_message_at in one transaction.
func (r *Repository) AppendMessage(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO messages (conversation_id, tenant_id, role, content, trace)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, conversation_id, tenant_id, role, content, trace, created_at`

	var out domain.Message
	err = tx.QueryRow(ctx, query, m.ConversationID, m.TenantID, m.Role, m.Content, m.Trace).
		Scan(&out.ID, &out.ConversationID, &out.TenantID, &out.Role, &out.Content, &out.Trace, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET last_message_at = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		m.TenantID, m.ConversationID, out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &out, nil
}

// RecentMessages returns the newest limit messages in chronological order.
func (r *Repository) RecentMessages(ctx context.Context, tenantID, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, conversation_id, tenant_id, role, content, trace, created_at
		FROM (
			SELECT id, conversation_id, tenant_id, role, content, trace, created_at
			FROM messages
			WHERE tenant_id = $1 AND conversation_id = $2
			ORDER BY created_at DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, tenantID, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.TenantID, &m.Role, &m.Content, &m.Trace, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkAbandonedBefore flips every non-terminal conversation whose last
// message predates cutoff to abandoned. Returns the affected conversations
// so callers can emit events per tenant.
func (r *Repository) MarkAbandonedBefore(ctx context.Context, cutoff time.Time) ([]domain.Conversation, error) {
	query := `
		UPDATE conversations
		SET status = 'abandoned', updated_at = now()
		WHERE status IN ('active', 'awaiting_human') AND last_message_at < $1
		RETURNING ` + conversationColumns

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("mark abandoned: %w", err)
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.TenantID, &c.UserID, &c.Status, &c.FunnelStage,
			&c.InterestedPlanID, &c.ContextSummary, &c.HandoffReason, &c.HandoffAt,
			&c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
