// Package sqlite provides the local SQLite-backed mood history store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/justestif/moodtune/internal/history"
)

// Adapter implements history.Store on a single SQLite file.
type Adapter struct {
	db *sql.DB
}

var _ history.Store = (*Adapter)(nil)

// NewAdapter opens the database at path and migrates the schema.
func NewAdapter(path string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	a := &Adapter{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite db: %w", err)
	}
	return a, nil
}

// Close closes the underlying database.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mood_entries (
		date       TEXT PRIMARY KEY,
		happy      REAL NOT NULL,
		sad        REAL NOT NULL,
		calm       REAL NOT NULL,
		excited    REAL NOT NULL,
		result     TEXT NOT NULL,
		activity   TEXT,
		note       TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mood_entry_keywords (
		date     TEXT NOT NULL REFERENCES mood_entries(date) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		keyword  TEXT NOT NULL,
		PRIMARY KEY (date, position)
	);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Upsert inserts the entry or replaces the one stored for the same date.
func (a *Adapter) Upsert(ctx context.Context, e history.Entry) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var activity sql.NullString
	if e.Activity != nil {
		activity = sql.NullString{String: *e.Activity, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO mood_entries (date, happy, sad, calm, excited, result, activity, note, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			happy = excluded.happy,
			sad = excluded.sad,
			calm = excluded.calm,
			excited = excluded.excited,
			result = excluded.result,
			activity = excluded.activity,
			note = excluded.note,
			updated_at = excluded.updated_at
	`, e.Date, e.Happy, e.Sad, e.Calm, e.Excited, e.Result, activity, e.Note,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM mood_entry_keywords WHERE date = ?`, e.Date); err != nil {
		return fmt.Errorf("clearing keywords: %w", err)
	}

	for i, kw := range e.Keywords {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mood_entry_keywords (date, position, keyword) VALUES (?, ?, ?)`,
			e.Date, i, kw,
		); err != nil {
			return fmt.Errorf("inserting keyword: %w", err)
		}
	}

	return tx.Commit()
}

// GetByDate returns the entry for date. Returns history.ErrNotFound when absent.
func (a *Adapter) GetByDate(ctx context.Context, date string) (*history.Entry, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT date, happy, sad, calm, excited, result, activity, note
		FROM mood_entries
		WHERE date = ?
	`, date)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading entry: %w", err)
	}

	kw, err := a.keywords(ctx, date)
	if err != nil {
		return nil, err
	}
	e.Keywords = kw[date]
	if e.Keywords == nil {
		e.Keywords = []string{}
	}
	return &e, nil
}

// GetForMonth returns entries whose date matches pattern ("2025-04%"),
// ordered by date.
func (a *Adapter) GetForMonth(ctx context.Context, pattern string) ([]history.Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT date, happy, sad, calm, excited, result, activity, note
		FROM mood_entries
		WHERE date LIKE ?
		ORDER BY date
	`, pattern)
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

	kw, err := a.keywords(ctx, pattern)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Keywords = kw[entries[i].Date]
		if entries[i].Keywords == nil {
			entries[i].Keywords = []string{}
		}
	}
	return entries, nil
}

// keywords loads keywords for dates matching pattern, grouped by date in
// stored order.
func (a *Adapter) keywords(ctx context.Context, pattern string) (map[string][]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT date, keyword
		FROM mood_entry_keywords
		WHERE date LIKE ?
		ORDER BY date, position
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("querying keywords: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var date, kw string
		if err := rows.Scan(&date, &kw); err != nil {
			return nil, fmt.Errorf("scanning keyword: %w", err)
		}
		out[date] = append(out[date], kw)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (history.Entry, error) {
	var e history.Entry
	var activity sql.NullString
	if err := s.Scan(&e.Date, &e.Happy, &e.Sad, &e.Calm, &e.Excited, &e.Result, &activity, &e.Note); err != nil {
		return history.Entry{}, err
	}
	if activity.Valid {
		a := activity.String
		e.Activity = &a
	}
	return e, nil
}
