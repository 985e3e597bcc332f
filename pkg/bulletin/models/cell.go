// Package models defines the value objects produced by bulletin extraction.
package models

import "fmt"

// CellRole describes how a cell participates in merging.
type CellRole string

const (
	// RoleOrigin is the top-left cell of a merged range.
	RoleOrigin CellRole = "origin"
	// RoleSpanned is a cell covered by some other cell's merge.
	RoleSpanned CellRole = "spanned"
	// RoleNormal is an unmerged cell.
	RoleNormal CellRole = "normal"
)

// Cell is one normalized table cell.
type Cell struct {
	// Role is the merge role of the cell.
	Role CellRole `json:"role"`
	// SpanHeight is the number of rows covered (>= 1, meaningful for origins).
	SpanHeight int `json:"span_height"`
	// SpanWidth is the number of columns covered (>= 1, meaningful for origins).
	SpanWidth int `json:"span_width"`
	// Text is the trimmed concatenation of all text fragments in the cell.
	Text string `json:"text"`
}

// Grid is an immutable rectangular matrix of cells.
type Grid struct {
	cells [][]Cell
	cols  int
}

// NewGrid copies rows into a Grid. All rows must have the same length.
func NewGrid(rows [][]Cell) (Grid, error) {
	g := Grid{cells: make([][]Cell, len(rows))}
	for i, row := range rows {
		if i == 0 {
			g.cols = len(row)
		} else if len(row) != g.cols {
			return Grid{}, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), g.cols)
		}
		g.cells[i] = append([]Cell(nil), row...)
	}
	return g, nil
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g.cells) }

// Cols returns the number of columns.
func (g Grid) Cols() int { return g.cols }

// At returns the cell at row r, column c. Out-of-range positions yield an
// empty normal cell.
func (g Grid) At(r, c int) Cell {
	if r < 0 || r >= len(g.cells) || c < 0 || c >= g.cols {
		return Cell{Role: RoleNormal, SpanHeight: 1, SpanWidth: 1}
	}
	return g.cells[r][c]
}

// Window is an inclusive range of rows belonging to one meal category.
type Window struct {
	StartRow int `json:"start_row"`
	EndRow   int `json:"end_row"`
}
