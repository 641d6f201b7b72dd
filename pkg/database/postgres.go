// Package database manages the PostgreSQL pool and schema for the run
// history store.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pgx pool behind the run history store.
type DB struct {
	*pgxpool.Pool
}

// Config holds connection settings for the history database. Zero values
// fall back to defaults sized for a short-lived CLI process, not a server.
type Config struct {
	URL            string
	MaxConnections int32
	ConnectTimeout time.Duration
}

const (
	defaultMaxConnections  = 5
	defaultConnectTimeout  = 10 * time.Second
	defaultMaxConnIdleTime = 5 * time.Minute
)

// Connect opens a pool against the history database and verifies it is
// reachable before returning.
func Connect(ctx context.Context, cfg *Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = defaultMaxConnections
	}
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = defaultConnectTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
