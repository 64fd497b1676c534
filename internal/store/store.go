// Package store persists the small amount of client-side state that
// must survive restarts: per-semester estimate-refresh timestamps and
// the user's last plan settings. Everything else lives on the backend.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const timeLayout = time.RFC3339

// Store is a SQLite-backed state store.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates and migrates) the database at
// path. ":memory:" opens a throwaway in-memory database for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS refresh_stamps (
		semester_id  TEXT PRIMARY KEY,
		refreshed_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS plan_prefs (
		semester_id      TEXT PRIMARY KEY,
		daily_hours      TEXT NOT NULL DEFAULT '',
		ignore_completed INTEGER NOT NULL DEFAULT 0,
		start_date       TEXT
	)`,
}

func migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// ── refresh timestamps ───────────────────────────────────────────────

// RefreshTimes returns the recorded refresh timestamp per semester.
func (s *Store) RefreshTimes(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT semester_id, refreshed_at FROM refresh_stamps`)
	if err != nil {
		return nil, fmt.Errorf("listing refresh stamps: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scanning refresh stamp: %w", err)
		}
		ts, err := time.Parse(timeLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parsing refresh stamp for %s: %w", id, err)
		}
		out[id] = ts
	}
	return out, rows.Err()
}

// SetRefreshTime records when a semester's estimates were last
// refreshed, overwriting any previous stamp.
func (s *Store) SetRefreshTime(ctx context.Context, semesterID string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO refresh_stamps (semester_id, refreshed_at) VALUES (?, ?)`,
		semesterID, ts.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upserting refresh stamp: %w", err)
	}
	return nil
}

// ── plan preferences ─────────────────────────────────────────────────

// PlanPrefs are the per-semester plan settings the user last used.
type PlanPrefs struct {
	SemesterID      string
	DailyHours      string
	IgnoreCompleted bool
	StartDate       *time.Time
}

// GetPlanPrefs loads the saved settings for one semester.
func (s *Store) GetPlanPrefs(ctx context.Context, semesterID string) (*PlanPrefs, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT semester_id, daily_hours, ignore_completed, start_date FROM plan_prefs WHERE semester_id = ?`,
		semesterID,
	)

	var p PlanPrefs
	var ignore int
	var start sql.NullString
	if err := row.Scan(&p.SemesterID, &p.DailyHours, &ignore, &start); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan prefs for %s: %w", semesterID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning plan prefs: %w", err)
	}
	p.IgnoreCompleted = ignore != 0
	if start.Valid {
		ts, err := time.Parse(timeLayout, start.String)
		if err != nil {
			return nil, fmt.Errorf("parsing plan start date: %w", err)
		}
		p.StartDate = &ts
	}
	return &p, nil
}

// SavePlanPrefs upserts the settings for one semester.
func (s *Store) SavePlanPrefs(ctx context.Context, p *PlanPrefs) error {
	ignore := 0
	if p.IgnoreCompleted {
		ignore = 1
	}
	var start any
	if p.StartDate != nil {
		start = p.StartDate.UTC().Format(timeLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO plan_prefs (semester_id, daily_hours, ignore_completed, start_date)
		 VALUES (?, ?, ?, ?)`,
		p.SemesterID, p.DailyHours, ignore, start,
	)
	if err != nil {
		return fmt.Errorf("upserting plan prefs: %w", err)
	}
	return nil
}
