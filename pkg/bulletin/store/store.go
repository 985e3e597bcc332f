// Package store persists weekly schedule records and escalation checkpoints.
//
// Records are written as JSON files named week-YYYYMMDD.json, the contract
// consumed by the daily renderer, and indexed by start date in SQLite.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	_ "modernc.org/sqlite"
)

// ErrRecordExists indicates a record for the week has already been written.
var ErrRecordExists = errors.New("weekly record already exists")

// ErrNoWeek indicates no record covers the requested date.
var ErrNoWeek = errors.New("no weekly record covers the date")

// LookbackDays is how far before a date a covering week may start.
const LookbackDays = 4

const schema = `
CREATE TABLE IF NOT EXISTS weeks (
	start_date TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	run_id     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS checkpoints (
	start_date TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	reason     TEXT NOT NULL,
	documents  TEXT NOT NULL,
	attempt    INTEGER NOT NULL,
	created_at TEXT NOT NULL
);`

// Store is the durable state of the pipeline.
type Store struct {
	db  *sql.DB
	dir string
}

// Open opens (or creates) the index database and record directory.
func Open(dbPath, recordDir string) (*Store, error) {
	if err := os.MkdirAll(recordDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir: %w", err)
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range append(pragmas, schema) {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %w", err)
		}
	}
	return &Store{db: db, dir: recordDir}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordName is the canonical file name of a week's record.
func RecordName(start models.Date) string {
	return "week-" + start.Compact() + ".json"
}

// RecordPath is the canonical path of a week's record.
func (s *Store) RecordPath(start models.Date) string {
	return filepath.Join(s.dir, RecordName(start))
}

// HasWeek reports whether a record exists for the week.
func (s *Store) HasWeek(ctx context.Context, start models.Date) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weeks WHERE start_date = ?`, start.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: query week: %w", err)
	}
	if n > 0 {
		return true, nil
	}
	_, err = os.Stat(s.RecordPath(start))
	return err == nil, nil
}

// SaveOptions controls SaveWeek.
type SaveOptions struct {
	RunID string
	// Replace overwrites an existing record.
	Replace bool
}

// SaveWeek writes the record to its canonical path and indexes it. Existing
// records are never modified unless opts.Replace is set.
func (s *Store) SaveWeek(ctx context.Context, rec *models.WeeklyScheduleRecord, opts SaveOptions) (string, error) {
	if !opts.Replace {
		exists, err := s.HasWeek(ctx, rec.StartDate)
		if err != nil {
			return "", err
		}
		if exists {
			return "", fmt.Errorf("%w: %s", ErrRecordExists, rec.StartDate)
		}
	}

	data, err := encodeJSON(rec)
	if err != nil {
		return "", err
	}

	path := s.RecordPath(rec.StartDate)
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("store: write record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO weeks (start_date, path, run_id, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(start_date) DO UPDATE SET path = excluded.path, run_id = excluded.run_id, created_at = excluded.created_at`,
		rec.StartDate.String(), path, opts.RunID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("store: index record: %w", err)
	}
	return path, nil
}

// LoadWeek reads the record for the week starting on start.
func (s *Store) LoadWeek(ctx context.Context, start models.Date) (*models.WeeklyScheduleRecord, error) {
	path := s.RecordPath(start)
	var indexed string
	err := s.db.QueryRowContext(ctx, `SELECT path FROM weeks WHERE start_date = ?`, start.String()).Scan(&indexed)
	switch {
	case err == nil:
		path = indexed
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("store: query week: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoWeek, start)
		}
		return nil, fmt.Errorf("store: read record: %w", err)
	}
	var rec models.WeeklyScheduleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return &rec, nil
}

// WeekFor returns the most recent record starting within LookbackDays before
// day, together with day's index within that week.
func (s *Store) WeekFor(ctx context.Context, day models.Date) (*models.WeeklyScheduleRecord, int, error) {
	for back := 0; back <= LookbackDays; back++ {
		start := day.AddDays(-back)
		rec, err := s.LoadWeek(ctx, start)
		if errors.Is(err, ErrNoWeek) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		return rec, back, nil
	}
	return nil, 0, fmt.Errorf("%w: %s", ErrNoWeek, day)
}

// encodeJSON renders v tab-indented without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
