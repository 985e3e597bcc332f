package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// cellArea is a 0-based inclusive cell rectangle.
type cellArea struct {
	R1, C1 int
	R2, C2 int
}

func (a cellArea) contains(r, c int) bool {
	return r >= a.R1 && r <= a.R2 && c >= a.C1 && c <= a.C2
}

// parseRangeToArea parses a range string like $A$1:$D$10.
func parseRangeToArea(rangeStr string) *cellArea {
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")

	parts := strings.Split(rangeStr, ":")
	if len(parts) != 2 {
		return nil
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return nil
	}

	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return nil
	}

	return &cellArea{
		R1: min(startRow, endRow) - 1,
		C1: min(startCol, endCol) - 1,
		R2: max(startRow, endRow) - 1,
		C2: max(startCol, endCol) - 1,
	}
}
