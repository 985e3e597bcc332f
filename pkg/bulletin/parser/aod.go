package parser

import (
	"strings"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// AODMarker identifies the text block that lists AODs.
const AODMarker = "Monday: "

// FindAODBlock returns the first text block containing the AOD marker,
// ignoring case.
func FindAODBlock(document string, blocks []string) (string, error) {
	for _, b := range blocks {
		if strings.Contains(strings.ToLower(b), strings.ToLower(AODMarker)) {
			return b, nil
		}
	}
	return "", newStructuralError(document, ComponentAOD, KindAODMissingMonday,
		"no text block contains %q", strings.TrimSpace(AODMarker))
}

// ParseAODs reads "Day: text" lines into an AODMap. Lines without the
// separator and days other than Monday..Thursday are ignored.
func ParseAODs(document, block string) (models.AODMap, error) {
	var m models.AODMap
	matchedMonday := false
	for _, line := range splitLines(block) {
		day, text, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		day = strings.ToLower(strings.TrimSpace(day))
		if !m.Set(day, strings.TrimSpace(text)) {
			continue
		}
		if day == "monday" {
			matchedMonday = true
		}
	}
	if !matchedMonday {
		return models.AODMap{}, newStructuralError(document, ComponentAOD, KindAODMissingMonday,
			"no line starts with %q", strings.TrimSpace(AODMarker))
	}
	if missing := m.Missing(); len(missing) > 0 {
		return models.AODMap{}, newStructuralError(document, ComponentAOD, KindAODIncomplete,
			"missing AOD for %s", strings.Join(missing, ", "))
	}
	return m, nil
}

// splitLines splits on newlines, carriage returns and vertical tabs (the
// line-break character some presentation tools emit).
func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\v'
	})
}
