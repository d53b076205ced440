// Package repository runs the tenant-scoped aggregate queries behind the
// analytics read models.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luizpibo/WorkHub-AI/internal/analytics/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) FunnelReport(ctx context.Context, tenantID uuid.UUID) (*domain.FunnelReport, error) {
	query := `
		SELECT funnel_stage, status, COUNT(*)
		FROM conversations
		WHERE tenant_id = $1
		GROUP BY funnel_stage, status`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("funnel report: %w", err)
	}
	defer rows.Close()

	report := &domain.FunnelReport{Stages: make(map[string]int)}
	for rows.Next() {
		var stage, status string
		var count int
		if err := rows.Scan(&stage, &status, &count); err != nil {
			return nil, fmt.Errorf("scan funnel row: %w", err)
		}
		report.Stages[stage] += count
		report.Total += count
		switch status {
		case "converted":
			report.Converted += count
		case "lost":
			report.Lost += count
		case "abandoned":
			report.Abandoned += count
		case "awaiting_human":
			report.AwaitingHuman += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if closed := report.Converted + report.Lost + report.Abandoned; closed > 0 {
		report.ConversionRate = float64(report.Converted) / float64(closed)
	}
	return report, nil
}

func (r *Repository) LeadReport(ctx context.Context, tenantID uuid.UUID) (*domain.LeadReport, error) {
	query := `
		SELECT stage, COUNT(*), COALESCE(AVG(score), 0)
		FROM leads
		WHERE tenant_id = $1
		GROUP BY stage`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("lead report: %w", err)
	}
	defer rows.Close()

	report := &domain.LeadReport{Stages: make(map[string]int)}
	var weighted float64
	for rows.Next() {
		var stage string
		var count int
		var avg float64
		if err := rows.Scan(&stage, &count, &avg); err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		report.Stages[stage] = count
		report.Total += count
		weighted += avg * float64(count)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if report.Total > 0 {
		report.AverageScore = weighted / float64(report.Total)
	}
	return report, nil
}

func (r *Repository) Overview(ctx context.Context, tenantID uuid.UUID) (*domain.Overview, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM conversations WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM messages WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM leads WHERE tenant_id = $1)`

	var o domain.Overview
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(&o.Users, &o.Conversations, &o.Messages, &o.Leads)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	return &o, nil
}
