// Package db owns the Postgres connection pool and the migration runner.
package db

import (
	"context"
	"time"

	"github.com/luizpibo/WorkHub-AI/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool limits sized for one API or scheduler instance. The chat path holds a
// connection only for the message writes around an agent run, so a small
// floor of warm connections is enough.
const (
	poolMaxConns        = 20
	poolMinConns        = 4
	poolMaxConnLifetime = time.Hour
	poolMaxConnIdleTime = 30 * time.Minute
	poolHealthCheck     = time.Minute
)

// NewPool connects to Postgres and verifies the connection with a ping
// before handing the pool to the caller.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = poolMaxConns
	poolConfig.MinConns = poolMinConns
	poolConfig.MaxConnLifetime = poolMaxConnLifetime
	poolConfig.MaxConnIdleTime = poolMaxConnIdleTime
	poolConfig.HealthCheckPeriod = poolHealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
