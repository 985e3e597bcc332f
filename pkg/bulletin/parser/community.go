package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// Canonical community-time labels.
const (
	LabelAssembly  = "Whole School Assembly"
	LabelTutorTime = "Tutor Time"
)

var tutorTimePhrases = []string{
	"tutor group check-in",
	"follow up day",
	"open session for tutor and tutee",
}

// CommunityTimeParams holds parameters for community-time extraction.
type CommunityTimeParams struct {
	// Columns is the full column count, header column included.
	Columns int
	// AllowReducedCohorts accepts Columns-1 columns with a warning.
	AllowReducedCohorts bool
	// Rows is the expected row count, header row included. Zero disables the check.
	Rows int
}

// DefaultCommunityTimeParams returns the five-column, five-row layout.
func DefaultCommunityTimeParams() CommunityTimeParams {
	return CommunityTimeParams{
		Columns:             5,
		AllowReducedCohorts: true,
		Rows:                5,
	}
}

// CanonicalActivity maps known free-text phrases onto fixed labels and trims
// everything else.
func CanonicalActivity(text string) string {
	t := strings.TrimSpace(text)
	switch {
	case containsFold(t, "whole school assembly"):
		return LabelAssembly
	case slices.ContainsFunc(tutorTimePhrases, func(p string) bool { return containsFold(t, p) }):
		return LabelTutorTime
	}
	return t
}

// ExtractCommunityTime validates the community-time table, fills merged
// ranges with their origin's canonical text and strips the header row and
// column.
func ExtractCommunityTime(document string, g models.Grid, p CommunityTimeParams) (models.CommunityTimeGrid, []Warning, error) {
	var warnings []Warning
	switch {
	case g.Cols() == p.Columns:
	case p.AllowReducedCohorts && g.Cols() == p.Columns-1:
		warnings = append(warnings, Warning{
			Component: ComponentCommunityTime,
			Message:   fmt.Sprintf("only %d columns found, assuming a reduced cohort set", g.Cols()),
		})
	default:
		return nil, nil, newStructuralError(document, ComponentCommunityTime, KindColumnCount,
			"table has %d columns, expected %s", g.Cols(), expectedColumns(p))
	}
	if p.Rows > 0 && g.Rows() != p.Rows {
		return nil, nil, newStructuralError(document, ComponentCommunityTime, KindRowCount,
			"table has %d rows, expected %d", g.Rows(), p.Rows)
	}

	res := make([][]string, g.Rows())
	for r := range res {
		res[r] = make([]string, g.Cols())
	}
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			cell := g.At(r, c)
			if cell.Role == models.RoleSpanned {
				continue
			}
			t := CanonicalActivity(cell.Text)
			res[r][c] = t
			if cell.Role != models.RoleOrigin {
				continue
			}
			for sh := 0; sh < cell.SpanHeight && r+sh < g.Rows(); sh++ {
				for sw := 0; sw < cell.SpanWidth && c+sw < g.Cols(); sw++ {
					res[r+sh][c+sw] = t
				}
			}
		}
	}

	out := make(models.CommunityTimeGrid, 0, max(len(res)-1, 0))
	for _, row := range res[min(1, len(res)):] {
		out = append(out, row[min(1, len(row)):])
	}
	return out, warnings, nil
}

func expectedColumns(p CommunityTimeParams) string {
	if p.AllowReducedCohorts {
		return fmt.Sprintf("%d or %d", p.Columns-1, p.Columns)
	}
	return fmt.Sprint(p.Columns)
}
