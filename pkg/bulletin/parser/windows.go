package parser

import (
	"fmt"
	"strings"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// DefaultPlaceholder is the menu filler cell that never counts as an item.
const DefaultPlaceholder = "Condiments Selection"

// MealTableParams holds parameters for parsing one meal table.
type MealTableParams struct {
	// Meal is the meal name, used in errors.
	Meal string
	// Categories are the category labels, one per window, top to bottom.
	Categories []string
	// Days are the labels of the data columns 1..len(Days).
	Days []string
	// FirstDataRow is the first row holding items (row 0 is the header,
	// row 1 is structural).
	FirstDataRow int
	// Placeholder is the filler text to drop.
	Placeholder string
}

// DefaultMealTableParams returns parameters for a five-day table with the
// given categories.
func DefaultMealTableParams(meal string, categories []string) MealTableParams {
	return MealTableParams{
		Meal:         meal,
		Categories:   categories,
		Days:         []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
		FirstDataRow: 2,
		Placeholder:  DefaultPlaceholder,
	}
}

// SegmentWindows scans column 0 from firstRow and returns one window per
// category. Every non-spanned cell starts a window until one start per
// category has been found; the last window then extends to the final row.
// ok is false when fewer starts than categories are present.
func SegmentWindows(g models.Grid, firstRow, categories int) (windows []models.Window, found int, ok bool) {
	var starts []int
	for r := firstRow; r < g.Rows() && len(starts) < categories; r++ {
		if g.At(r, 0).Role != models.RoleSpanned {
			starts = append(starts, r)
		}
	}
	if len(starts) != categories || categories == 0 {
		return nil, len(starts), false
	}
	windows = make([]models.Window, len(starts))
	for i, start := range starts {
		end := g.Rows() - 1
		if i+1 < len(starts) {
			end = starts[i+1] - 1
		}
		windows[i] = models.Window{StartRow: start, EndRow: end}
	}
	return windows, len(starts), true
}

// ParseMealTable segments g into category windows and buckets the item text
// of each day column. A labelled column-0 row past the last category start is
// kept in the last window and reported as a warning.
func ParseMealTable(document string, g models.Grid, p MealTableParams) (models.MealTable, []Warning, error) {
	if g.Cols() < len(p.Days)+1 {
		return models.MealTable{}, nil, newStructuralError(document, ComponentMenu, KindColumnCount,
			"%s table has %d columns, expected at least %d", p.Meal, g.Cols(), len(p.Days)+1)
	}
	windows, found, ok := SegmentWindows(g, p.FirstDataRow, len(p.Categories))
	if !ok {
		return models.MealTable{}, nil, newStructuralError(document, ComponentMenu, KindWindowCount,
			"%s table has %d category windows, expected %d", p.Meal, found, len(p.Categories))
	}

	var warnings []Warning
	last := windows[len(windows)-1]
	for r := last.StartRow + 1; r <= last.EndRow; r++ {
		if c := g.At(r, 0); c.Role != models.RoleSpanned && c.Text != "" {
			warnings = append(warnings, Warning{
				Component: ComponentMenu,
				Message: fmt.Sprintf("%s row %d label %q has no category, items kept under %q",
					p.Meal, r, c.Text, p.Categories[len(p.Categories)-1]),
			})
		}
	}

	table := models.MealTable{Days: make([]models.DayColumn, len(p.Days))}
	for d, day := range p.Days {
		col := d + 1
		column := models.DayColumn{Day: day, Windows: make([]models.WindowItems, len(windows))}
		for w, win := range windows {
			items := []string{}
			for r := win.StartRow; r <= win.EndRow; r++ {
				text := g.At(r, col).Text
				if text == "" || isPlaceholder(text, p.Placeholder) {
					continue
				}
				items = append(items, cleanMenuItem(text))
			}
			column.Windows[w] = models.WindowItems{Category: p.Categories[w], Items: items}
		}
		table.Days[d] = column
	}
	return table, warnings, nil
}

// isPlaceholder matches the placeholder exactly, or followed by whitespace and
// more text (spreadsheet menus append the condiment list on a new line).
func isPlaceholder(text, placeholder string) bool {
	if placeholder == "" {
		return false
	}
	t, p := foldText(text), foldText(placeholder)
	return t == p || strings.HasPrefix(t, p+" ")
}
