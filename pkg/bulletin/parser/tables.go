package parser

import (
	"fmt"
	"sort"
)

// TableDetectionParams holds parameters for locating meal blocks on a sheet.
type TableDetectionParams struct {
	// MarkerColumn is the 0-based column holding the meal markers; it is
	// also the category column of each block.
	MarkerColumn int
	// MinNonemptyCells rejects blocks with fewer non-empty cells.
	MinNonemptyCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		MarkerColumn:     1,
		MinNonemptyCells: 3,
	}
}

type markerHit struct {
	meal     string
	row, col int
}

// locateMealBlocks finds the first marker-column cell starting with each
// marker and returns the block that starts there: days columns to its right,
// down to the row before the next marker (or the last data row).
func locateMealBlocks(rows [][]string, markers map[string]string, days int, params TableDetectionParams) (map[string]cellArea, error) {
	_, maxRow, _, _ := findDataBounds(rows)
	if maxRow < 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrTableNotFound)
	}

	var hits []markerHit
	for meal, marker := range markers {
		row, ok := findMarker(rows, params.MarkerColumn, marker)
		if !ok {
			return nil, fmt.Errorf("%w: no cell in column %d starts with %q", ErrTableNotFound, params.MarkerColumn+1, marker)
		}
		hits = append(hits, markerHit{meal: meal, row: row, col: params.MarkerColumn})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].row < hits[j].row })

	blocks := make(map[string]cellArea, len(hits))
	for i, h := range hits {
		bottom := maxRow
		if i+1 < len(hits) {
			bottom = hits[i+1].row - 1
		}
		area := cellArea{R1: h.row, C1: h.col, R2: bottom, C2: h.col + days}
		if n := countNonEmptyCells(rows, area.R1, area.R2, area.C1, area.C2); n < params.MinNonemptyCells {
			return nil, fmt.Errorf("%w: %s block has %d non-empty cells", ErrTableNotFound, h.meal, n)
		}
		blocks[h.meal] = area
	}
	return blocks, nil
}

// findMarker returns the first row whose cell in col starts with marker as
// a whole word.
func findMarker(rows [][]string, col int, marker string) (int, bool) {
	for r := range rows {
		if cell := cellText(rows, r, col); cell != "" && hasWordPrefixFold(cell, marker) {
			return r, true
		}
	}
	return -1, false
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell != "" {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}

// countNonEmptyCells counts non-empty cells within bounds.
func countNonEmptyCells(rows [][]string, minRow, maxRow, minCol, maxCol int) int {
	count := 0
	for rowIdx := minRow; rowIdx <= maxRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := minCol; colIdx <= maxCol && colIdx < len(row); colIdx++ {
			if row[colIdx] != "" {
				count++
			}
		}
	}
	return count
}
