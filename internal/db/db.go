// Package db provides PostgreSQL storage for mood history.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/moodtune/internal/history"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = history.ErrNotFound

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Migrate creates the schema if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS mood_entries (
			date       DATE PRIMARY KEY,
			happy      DOUBLE PRECISION NOT NULL,
			sad        DOUBLE PRECISION NOT NULL,
			calm       DOUBLE PRECISION NOT NULL,
			excited    DOUBLE PRECISION NOT NULL,
			result     TEXT NOT NULL,
			keywords   TEXT[] NOT NULL DEFAULT '{}',
			activity   TEXT,
			note       TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := db.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("creating mood_entries: %w", err)
	}
	return nil
}

// Entries returns an EntryRepository.
func (db *DB) Entries() *EntryRepository {
	return &EntryRepository{pool: db.pool}
}
