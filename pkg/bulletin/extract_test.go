package bulletin

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dailybulletin/bulletin/pkg/bulletin/acquire"
	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/dailybulletin/bulletin/pkg/bulletin/parser"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

var dayCols = []string{"C", "D", "E", "F", "G"}

// createMenuWorkbook writes three meal blocks of two categories each. The
// first category spans two rows; dropSecond omits its second item.
func createMenuWorkbook(t *testing.T, name, lang string, dropSecond bool) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	set := func(axis string, v string) {
		if err := f.SetCellValue(sheet, axis, v); err != nil {
			t.Fatalf("Failed to set %s: %v", axis, err)
		}
	}
	row := 2
	for _, meal := range []string{"BREAKFAST", "LUNCH", "DINNER"} {
		set(fmt.Sprintf("B%d", row), meal)
		for i, col := range dayCols {
			set(fmt.Sprintf("%s%d", col, row+1), []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}[i])
			set(fmt.Sprintf("%s%d", col, row+2), fmt.Sprintf("%s A %s %d", lang, meal, i))
			set(fmt.Sprintf("%s%d", col, row+4), fmt.Sprintf("%s B %s %d", lang, meal, i))
		}
		if !dropSecond {
			set(fmt.Sprintf("C%d", row+3), lang+" A2 "+meal)
		}
		set(fmt.Sprintf("D%d", row+3), "Condiments Selection")
		set(fmt.Sprintf("B%d", row+2), "Cat A")
		set(fmt.Sprintf("B%d", row+4), "Cat B")
		if err := f.MergeCell(sheet, fmt.Sprintf("B%d", row+2), fmt.Sprintf("B%d", row+3)); err != nil {
			t.Fatalf("Failed to merge cells: %v", err)
		}
		row += 6
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return path
}

func spreadsheetOptions() Options {
	opts := DefaultOptions()
	opts.MenuFormat = MenuSpreadsheet
	for meal, src := range opts.Meals {
		src.Params.Categories = []string{"Cat A", "Cat B"}
		opts.Meals[meal] = src
	}
	return opts
}

func TestExtractSpreadsheetMenu(t *testing.T) {
	en := createMenuWorkbook(t, "menu-en.xlsx", "en", false)
	zh := createMenuWorkbook(t, "menu-zh.xlsx", "zh", false)
	e := &DocumentExtractor{Options: spreadsheetOptions()}

	menu, warnings, err := e.extractMenu(en, zh)
	if err != nil {
		t.Fatalf("extractMenu failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}

	monday, ok := menu.Lunch.ForDay(0)
	if !ok {
		t.Fatal("Expected Monday lunch")
	}
	expected := []models.CategoryItems{
		{Category: "Cat A", Items: []models.BilingualItem{
			{Primary: "en A LUNCH 0", Secondary: "zh A LUNCH 0"},
			{Primary: "en A2 LUNCH", Secondary: "zh A2 LUNCH"},
		}},
		{Category: "Cat B", Items: []models.BilingualItem{
			{Primary: "en B LUNCH 0", Secondary: "zh B LUNCH 0"},
		}},
	}
	if diff := cmp.Diff(expected, monday); diff != "" {
		t.Errorf("Monday lunch mismatch (-want +got):\n%s", diff)
	}

	tuesday, _ := menu.Dinner.ForDay(1)
	if len(tuesday[0].Items) != 1 {
		t.Errorf("Expected placeholder to be dropped, got %+v", tuesday[0].Items)
	}
	if len(menu.Breakfast.Days) != 5 {
		t.Errorf("Expected 5 breakfast days, got %d", len(menu.Breakfast.Days))
	}
}

func TestExtractSpreadsheetMenuShapeMismatch(t *testing.T) {
	en := createMenuWorkbook(t, "menu-en.xlsx", "en", false)
	zh := createMenuWorkbook(t, "menu-zh.xlsx", "zh", true)
	e := &DocumentExtractor{Options: spreadsheetOptions()}

	_, _, err := e.extractMenu(en, zh)
	var shapeErr *parser.MealTableShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("Expected MealTableShapeError, got %v", err)
	}
	if shapeErr.Meal != models.MealBreakfast || shapeErr.Path != "day[0]/window[0]" {
		t.Errorf("Unexpected mismatch %s at %s", shapeErr.Meal, shapeErr.Path)
	}
	paths, ok := escalationTarget(err, false)
	if !ok || len(paths) != 2 {
		t.Errorf("Expected escalation of both menus, got %v (%v)", paths, ok)
	}
}

func TestExtractMissingDocument(t *testing.T) {
	e := &DocumentExtractor{Options: DefaultOptions()}
	docs := acquire.Documents{acquire.KindWeekAhead: filepath.Join(t.TempDir(), "missing.pptx")}

	_, err := e.Extract(t.Context(), docs)
	var mde *parser.MalformedDocumentError
	if !errors.As(err, &mde) {
		t.Fatalf("Expected MalformedDocumentError, got %v", err)
	}
	if _, ok := escalationTarget(err, true); ok {
		t.Error("Expected malformed documents not to escalate")
	}
}

func TestAssemble(t *testing.T) {
	ex := &Extraction{
		CommunityTime: models.CommunityTimeGrid{{"Tutor Time"}},
		AODs:          models.AODMap{Monday: "Alice"},
	}
	rec := assemble(testWeek(), ex)
	if !rec.StartDate.Equal(testWeek()) || rec.AODs.Monday != "Alice" || len(rec.CommunityTime) != 1 {
		t.Errorf("Unexpected record %+v", rec)
	}
}
