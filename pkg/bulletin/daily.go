package bulletin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"go.uber.org/zap"
)

// DefaultCycleDay is used when the cycle data has no entry for a date.
const DefaultCycleDay = "SA"

var (
	weekdayNames        = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	weekdayNamesChinese = []string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}
	weekdayAbbrevs      = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
)

// CycleData maps YYYY-MM-DD dates to the day of the timetable cycle.
type CycleData map[string]string

// LoadCycleData reads a JSON cycle data file.
func LoadCycleData(path string) (CycleData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cycle data: %w", err)
	}
	var cd CycleData
	if err := json.Unmarshal(data, &cd); err != nil {
		return nil, fmt.Errorf("parse cycle data %s: %w", path, err)
	}
	return cd, nil
}

// DayOfCycle returns the cycle day for day.
func (c CycleData) DayOfCycle(day models.Date) (string, error) {
	if v, ok := c[day.String()]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoCycleDay, day)
}

// WeekLookup finds the weekly record covering a date.
type WeekLookup interface {
	WeekFor(ctx context.Context, day models.Date) (*models.WeeklyScheduleRecord, int, error)
}

// DaySink stores a daily summary.
type DaySink interface {
	SaveDay(summary *models.DailySummary, day models.Date) (string, error)
}

// BuildDailySummary slices the record for the day at index within its week.
func BuildDailySummary(rec *models.WeeklyScheduleRecord, day models.Date, index int, cycleDay string) *models.DailySummary {
	wd := (int(day.Weekday()) + 6) % 7 // Monday = 0

	ct := rec.CommunityTimeFrom(index)
	aod, ok := rec.AODs.ForDay(index)
	if !ok || aod == "" {
		aod = "None"
	}
	abbrevs := weekdayAbbrevs[wd:]
	if n := len(ct); n > 0 && n < len(abbrevs) {
		abbrevs = abbrevs[:n]
	}

	s := &models.DailySummary{
		StdDate:        day.String(),
		CommunityTime:  ct,
		DaysAfterThis:  max(len(ct)-1, 0),
		AOD:            aod,
		WeekdayEnglish: weekdayNames[wd],
		WeekdayChinese: weekdayNamesChinese[wd],
		WeekdaysAbbrev: append([]string(nil), abbrevs...),
		DayOfCycle:     cycleDay,
		TodaySnack:     rec.Snacks.ForDay(index),
	}
	s.TodayBreakfast, _ = rec.Menu.Breakfast.ForDay(index)
	s.TodayLunch, _ = rec.Menu.Lunch.ForDay(index)
	s.TodayDinner, _ = rec.Menu.Dinner.ForDay(index)
	s.NextBreakfast, _ = rec.Menu.Breakfast.ForDay(index + 1)
	return s
}

// RunDay writes the daily summary for day from the covering weekly record.
func RunDay(ctx context.Context, weeks WeekLookup, sink DaySink, day models.Date, cycle CycleData, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rec, index, err := weeks.WeekFor(ctx, day)
	if err != nil {
		return "", err
	}

	cycleDay, err := cycle.DayOfCycle(day)
	if err != nil {
		logger.Info("cycle day not found, using default", zap.String("day", day.String()), zap.String("default", DefaultCycleDay))
		cycleDay = DefaultCycleDay
	}

	summary := BuildDailySummary(rec, day, index, cycleDay)
	path, err := sink.SaveDay(summary, day)
	if err != nil {
		return "", err
	}
	logger.Info("daily summary written",
		zap.String("path", path),
		zap.String("week", rec.StartDate.String()),
		zap.Int("index", index))
	return path, nil
}
