package store

import (
	"fmt"
	"path/filepath"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// DayName is the canonical file name of a daily summary.
func DayName(day models.Date) string {
	return "day-" + day.Compact() + ".json"
}

// SaveDay writes a daily summary next to the weekly records, replacing any
// previous summary for the same day.
func (s *Store) SaveDay(summary *models.DailySummary, day models.Date) (string, error) {
	data, err := encodeJSON(summary)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, DayName(day))
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("store: write summary: %w", err)
	}
	return path, nil
}
