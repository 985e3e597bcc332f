package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// Checkpoint records that a run is suspended waiting for manual correction.
type Checkpoint struct {
	Week      models.Date
	RunID     string
	Reason    string
	Documents []string
	Attempt   int
	CreatedAt time.Time
}

// SaveCheckpoint stores cp, replacing any checkpoint for the same week.
func (s *Store) SaveCheckpoint(ctx context.Context, cp Checkpoint) error {
	docs, err := json.Marshal(cp.Documents)
	if err != nil {
		return fmt.Errorf("store: encode documents: %w", err)
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (start_date, run_id, reason, documents, attempt, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(start_date) DO UPDATE SET run_id = excluded.run_id, reason = excluded.reason,
		 documents = excluded.documents, attempt = excluded.attempt, created_at = excluded.created_at`,
		cp.Week.String(), cp.RunID, cp.Reason, string(docs), cp.Attempt, cp.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint returns the checkpoint for week, if any.
func (s *Store) LoadCheckpoint(ctx context.Context, week models.Date) (*Checkpoint, bool, error) {
	var (
		cp        = Checkpoint{Week: week}
		docs      string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, reason, documents, attempt, created_at FROM checkpoints WHERE start_date = ?`,
		week.String()).Scan(&cp.RunID, &cp.Reason, &docs, &cp.Attempt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load checkpoint: %w", err)
	}
	if err := json.Unmarshal([]byte(docs), &cp.Documents); err != nil {
		return nil, false, fmt.Errorf("store: decode documents: %w", err)
	}
	cp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &cp, true, nil
}

// ClearCheckpoint removes the checkpoint for week.
func (s *Store) ClearCheckpoint(ctx context.Context, week models.Date) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE start_date = ?`, week.String()); err != nil {
		return fmt.Errorf("store: clear checkpoint: %w", err)
	}
	return nil
}
