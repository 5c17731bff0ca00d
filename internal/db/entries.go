package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/moodtune/internal/history"
)

// EntryRepository handles mood entry database operations.
type EntryRepository struct {
	pool *pgxpool.Pool
}

var _ history.Store = (*EntryRepository)(nil)

// Upsert inserts an entry or replaces the one for the same date.
func (r *EntryRepository) Upsert(ctx context.Context, e history.Entry) error {
	query := `
		INSERT INTO mood_entries (date, happy, sad, calm, excited, result, keywords, activity, note, created_at, updated_at)
		VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (date) DO UPDATE SET
			happy = EXCLUDED.happy,
			sad = EXCLUDED.sad,
			calm = EXCLUDED.calm,
			excited = EXCLUDED.excited,
			result = EXCLUDED.result,
			keywords = EXCLUDED.keywords,
			activity = EXCLUDED.activity,
			note = EXCLUDED.note,
			updated_at = NOW()
	`
	keywords := e.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		e.Date,
		e.Happy,
		e.Sad,
		e.Calm,
		e.Excited,
		e.Result,
		keywords,
		e.Activity,
		e.Note,
	)
	if err != nil {
		return fmt.Errorf("upserting entry: %w", err)
	}
	return nil
}

// GetByDate retrieves the entry for date ("YYYY-MM-DD").
func (r *EntryRepository) GetByDate(ctx context.Context, date string) (*history.Entry, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM-DD'), happy, sad, calm, excited, result, keywords, activity, note
		FROM mood_entries
		WHERE date = $1::date
	`
	e, err := scanEntry(r.pool.QueryRow(ctx, query, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}
	return &e, nil
}

// GetForMonth retrieves entries whose date matches pattern ("2025-04%"),
// ordered by date.
func (r *EntryRepository) GetForMonth(ctx context.Context, pattern string) ([]history.Entry, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM-DD'), happy, sad, calm, excited, result, keywords, activity, note
		FROM mood_entries
		WHERE to_char(date, 'YYYY-MM-DD') LIKE $1
		ORDER BY date
	`
	rows, err := r.pool.Query(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (history.Entry, error) {
	var e history.Entry
	err := row.Scan(
		&e.Date,
		&e.Happy,
		&e.Sad,
		&e.Calm,
		&e.Excited,
		&e.Result,
		&e.Keywords,
		&e.Activity,
		&e.Note,
	)
	return e, err
}
