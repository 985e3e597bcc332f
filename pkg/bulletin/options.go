// Package bulletin extracts a school week's schedule from its source
// documents and produces the weekly record and daily summaries.
package bulletin

import (
	"time"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/dailybulletin/bulletin/pkg/bulletin/parser"
)

// MenuFormat selects how the menu documents are read.
type MenuFormat string

const (
	// MenuPresentation reads one slide per meal from a deck.
	MenuPresentation MenuFormat = "pptx"
	// MenuSpreadsheet reads one marked block per meal from a sheet.
	MenuSpreadsheet MenuFormat = "xlsx"
)

// MealSource locates one meal table in the menu documents.
type MealSource struct {
	// Slide is the 0-based slide index for presentation menus.
	Slide int
	// Marker is the cell text that starts the meal block in spreadsheet menus.
	Marker string
	Params parser.MealTableParams
}

// Options configures a weekly run. Parser parameters are built once here and
// handed to each extractor as they are.
type Options struct {
	BuildDir string
	Location *time.Location

	MenuFormat MenuFormat
	// MenuSheet is the spreadsheet sheet name; empty means the first sheet.
	MenuSheet      string
	Meals          map[string]MealSource
	TableDetection parser.TableDetectionParams

	CommunityTimeSlide int
	AODSlide           int
	CommunityTime      parser.CommunityTimeParams

	Snacks parser.SnackParams

	// EscalateAOD routes AOD structural errors through manual correction.
	EscalateAOD bool
	// EscalateCommand opens a document for editing; the path is appended.
	EscalateCommand []string

	// Force re-extracts a week that already has a record.
	Force bool
}

// MealOrder is the order meals are extracted and assembled in.
var MealOrder = []string{models.MealBreakfast, models.MealLunch, models.MealDinner}

var (
	breakfastCategories = []string{
		"Taste of Asia",
		"Eat Global",
		"Revolution Noodle",
		"Piccola Italia",
		"Self Pick-up",
		"Fruit/Drink",
	}
	mainMealCategories = []string{
		"Taste of Asia",
		"Eat Global",
		"Revolution Noodle",
		"Piccola Italia",
		"Vegetarian",
		"Daily Soup",
		"Dessert/Fruit/Drink",
	}
)

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		BuildDir:   "build",
		Location:   time.Local,
		MenuFormat: MenuPresentation,
		Meals: map[string]MealSource{
			models.MealBreakfast: {
				Slide:  1,
				Marker: "BREAKFAST",
				Params: parser.DefaultMealTableParams(models.MealBreakfast, breakfastCategories),
			},
			models.MealLunch: {
				Slide:  2,
				Marker: "LUNCH",
				Params: parser.DefaultMealTableParams(models.MealLunch, mainMealCategories),
			},
			models.MealDinner: {
				Slide:  3,
				Marker: "DINNER",
				Params: parser.DefaultMealTableParams(models.MealDinner, mainMealCategories),
			},
		},
		TableDetection:     parser.DefaultTableParams(),
		CommunityTimeSlide: 1,
		AODSlide:           2,
		CommunityTime:      parser.DefaultCommunityTimeParams(),
		Snacks:             parser.DefaultSnackParams(),
		EscalateAOD:        true,
		EscalateCommand:    []string{"xdg-open"},
	}
}

// menuExt returns the file extension of the menu documents.
func (o Options) menuExt() string {
	if o.MenuFormat == MenuSpreadsheet {
		return string(MenuSpreadsheet)
	}
	return string(MenuPresentation)
}
