package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// Workbook is an open spreadsheet menu.
type Workbook struct {
	path string
	f    *excelize.File
}

// OpenWorkbook opens an .xlsx file.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrDocumentUnavailable, err)
		}
		return nil, NewMalformedDocumentError(path, "sheet", err)
	}
	return &Workbook{path: path, f: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// resolveSheet returns name, or the first sheet when name is empty.
func (w *Workbook) resolveSheet(name string) (string, error) {
	sheets := w.f.GetSheetList()
	if name == "" {
		if len(sheets) == 0 {
			return "", NewMalformedDocumentError(w.path, "sheet", fmt.Errorf("%w: workbook has no sheets", ErrPageNotFound))
		}
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == name {
			return s, nil
		}
	}
	return "", NewMalformedDocumentError(w.path, "sheet", fmt.Errorf("%w: sheet %q", ErrPageNotFound, name))
}

// MealTables locates one table per marker (e.g. "BREAKFAST") on the sheet.
// Each table starts at its marker cell and spans days data columns to the
// right; it ends before the next marker row.
func (w *Workbook) MealTables(sheet string, markers map[string]string, days int, params TableDetectionParams) (map[string]TableSource, error) {
	name, err := w.resolveSheet(sheet)
	if err != nil {
		return nil, err
	}
	rows, err := w.f.GetRows(name)
	if err != nil {
		return nil, NewMalformedDocumentError(w.path, "sheet", err)
	}
	merges, err := w.mergedAreas(name)
	if err != nil {
		return nil, NewMalformedDocumentError(w.path, "sheet", err)
	}

	blocks, err := locateMealBlocks(rows, markers, days, params)
	if err != nil {
		return nil, NewMalformedDocumentError(w.path, "sheet", err)
	}
	result := make(map[string]TableSource, len(blocks))
	for meal, b := range blocks {
		result[meal] = &sheetTable{rows: rows, merges: merges, bounds: b}
	}
	return result, nil
}

func (w *Workbook) mergedAreas(sheet string) ([]cellArea, error) {
	mcs, err := w.f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	areas := make([]cellArea, 0, len(mcs))
	for _, mc := range mcs {
		if area := parseRangeToArea(mc.GetStartAxis() + ":" + mc.GetEndAxis()); area != nil {
			areas = append(areas, *area)
		}
	}
	return areas, nil
}

// sheetTable exposes a rectangular block of a sheet as a TableSource.
type sheetTable struct {
	rows   [][]string
	merges []cellArea
	bounds cellArea
}

func (t *sheetTable) RowCount() int    { return t.bounds.R2 - t.bounds.R1 + 1 }
func (t *sheetTable) ColumnCount() int { return t.bounds.C2 - t.bounds.C1 + 1 }

func (t *sheetTable) Cell(row, col int) SourceCell {
	r, c := t.bounds.R1+row, t.bounds.C1+col
	cell := SourceCell{SpanHeight: 1, SpanWidth: 1}
	if text := cellText(t.rows, r, c); text != "" {
		cell.Fragments = []string{text}
	}
	for _, m := range t.merges {
		if !m.contains(r, c) {
			continue
		}
		if r == m.R1 && c == m.C1 {
			cell.MergeOrigin = true
			cell.SpanHeight = min(m.R2, t.bounds.R2) - r + 1
			cell.SpanWidth = min(m.C2, t.bounds.C2) - c + 1
		} else {
			cell.Spanned = true
		}
		break
	}
	return cell
}

// cellText returns rows[r][c] (0-based), or "" when the row is short.
func cellText(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) || c < 0 || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}
