// Package parser reads slide decks, spreadsheets and PDFs into grids and
// text runs, and extracts the weekly schedule from them.
package parser

import (
	"strings"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"golang.org/x/text/unicode/norm"
)

// SourceCell is a table cell as exposed by a document reader.
type SourceCell struct {
	// MergeOrigin is set on the top-left cell of a merged range.
	MergeOrigin bool
	// Spanned is set on cells covered by another cell's merge.
	Spanned bool
	// SpanHeight and SpanWidth are the merge extent (0 is treated as 1).
	SpanHeight int
	SpanWidth  int
	// Fragments are the text runs of the cell in document order.
	Fragments []string
}

// TableSource is a document-level table with merge information.
type TableSource interface {
	RowCount() int
	ColumnCount() int
	Cell(row, col int) SourceCell
}

// NormalizeGrid converts a document table into a Grid. Fragments are
// concatenated without separators and the result trimmed. A nil source means
// the expected table is absent.
func NormalizeGrid(document string, src TableSource) (models.Grid, error) {
	if src == nil {
		return models.Grid{}, NewMalformedDocumentError(document, "grid", ErrTableNotFound)
	}
	rows := make([][]models.Cell, src.RowCount())
	for r := range rows {
		row := make([]models.Cell, src.ColumnCount())
		for c := range row {
			row[c] = normalizeCell(src.Cell(r, c))
		}
		rows[r] = row
	}
	g, err := models.NewGrid(rows)
	if err != nil {
		return models.Grid{}, NewMalformedDocumentError(document, "grid", err)
	}
	return g, nil
}

func normalizeCell(sc SourceCell) models.Cell {
	cell := models.Cell{
		Role:       models.RoleNormal,
		SpanHeight: max(sc.SpanHeight, 1),
		SpanWidth:  max(sc.SpanWidth, 1),
		Text:       normalizeText(strings.Join(sc.Fragments, "")),
	}
	switch {
	case sc.Spanned:
		cell.Role = models.RoleSpanned
	case sc.MergeOrigin:
		cell.Role = models.RoleOrigin
	}
	return cell
}

// normalizeText applies NFC and trims surrounding whitespace.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
