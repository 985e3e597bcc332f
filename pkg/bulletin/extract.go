package bulletin

import (
	"context"
	"fmt"

	"github.com/dailybulletin/bulletin/pkg/bulletin/acquire"
	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/dailybulletin/bulletin/pkg/bulletin/parser"
	"go.uber.org/zap"
)

// Extraction holds everything read from one week's documents.
type Extraction struct {
	CommunityTime models.CommunityTimeGrid
	AODs          models.AODMap
	Menu          models.Menu
	Snacks        models.SnackSet
	Warnings      []parser.Warning
}

// Extractor reads a week's documents.
type Extractor interface {
	Extract(ctx context.Context, docs acquire.Documents) (*Extraction, error)
}

// DocumentExtractor reads the deck, menu and snack documents from disk.
type DocumentExtractor struct {
	Options Options
	Logger  *zap.Logger
}

// Extract implements Extractor. It stops at the first failing document.
func (e *DocumentExtractor) Extract(ctx context.Context, docs acquire.Documents) (*Extraction, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ex := &Extraction{}

	twa := docs[acquire.KindWeekAhead]
	ct, warnings, err := e.extractCommunityTime(twa)
	if err != nil {
		return nil, err
	}
	ex.CommunityTime = ct
	ex.addWarnings(logger, warnings)

	if ex.AODs, err = e.extractAODs(twa); err != nil {
		return nil, err
	}
	logger.Debug("week-ahead deck extracted", zap.String("path", twa), zap.Int("days", len(ct)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ex.Menu, warnings, err = e.extractMenu(docs[acquire.KindMenuPrimary], docs[acquire.KindMenuSecondary]); err != nil {
		return nil, err
	}
	ex.addWarnings(logger, warnings)
	logger.Debug("menus extracted")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ex.Snacks, err = e.extractSnacks(docs[acquire.KindSnacks]); err != nil {
		return nil, err
	}
	logger.Debug("snacks extracted", zap.Int("morning", len(ex.Snacks.Morning)))
	return ex, nil
}

func (ex *Extraction) addWarnings(logger *zap.Logger, warnings []parser.Warning) {
	ex.Warnings = append(ex.Warnings, warnings...)
	for _, w := range warnings {
		logger.Warn("extraction warning", zap.String("component", w.Component), zap.String("message", w.Message))
	}
}

func (e *DocumentExtractor) extractCommunityTime(path string) (models.CommunityTimeGrid, []parser.Warning, error) {
	deck, err := parser.OpenDeck(path)
	if err != nil {
		return nil, nil, err
	}
	defer deck.Close()

	src, err := deck.Table(e.Options.CommunityTimeSlide)
	if err != nil {
		return nil, nil, err
	}
	g, err := parser.NormalizeGrid(path, src)
	if err != nil {
		return nil, nil, err
	}
	return parser.ExtractCommunityTime(path, g, e.Options.CommunityTime)
}

func (e *DocumentExtractor) extractAODs(path string) (models.AODMap, error) {
	deck, err := parser.OpenDeck(path)
	if err != nil {
		return models.AODMap{}, err
	}
	defer deck.Close()

	blocks, err := deck.TextBlocks(e.Options.AODSlide)
	if err != nil {
		return models.AODMap{}, err
	}
	block, err := parser.FindAODBlock(path, blocks)
	if err != nil {
		return models.AODMap{}, err
	}
	return parser.ParseAODs(path, block)
}

func (e *DocumentExtractor) extractMenu(primaryPath, secondaryPath string) (models.Menu, []parser.Warning, error) {
	primary, warnings, err := e.mealTables(primaryPath)
	if err != nil {
		return models.Menu{}, nil, err
	}
	secondary, secondaryWarnings, err := e.mealTables(secondaryPath)
	if err != nil {
		return models.Menu{}, nil, err
	}
	warnings = append(warnings, secondaryWarnings...)

	var menu models.Menu
	for _, meal := range MealOrder {
		merged, err := parser.MergeBilingual(meal, primaryPath, secondaryPath, primary[meal], secondary[meal])
		if err != nil {
			return models.Menu{}, nil, err
		}
		*menu.Meal(meal) = merged
	}
	return menu, warnings, nil
}

// mealTables reads and segments every meal table of one menu document.
func (e *DocumentExtractor) mealTables(path string) (map[string]models.MealTable, []parser.Warning, error) {
	grids, err := e.mealGrids(path)
	if err != nil {
		return nil, nil, err
	}
	var warnings []parser.Warning
	tables := make(map[string]models.MealTable, len(grids))
	for _, meal := range MealOrder {
		t, w, err := parser.ParseMealTable(path, grids[meal], e.Options.Meals[meal].Params)
		if err != nil {
			return nil, nil, err
		}
		tables[meal] = t
		warnings = append(warnings, w...)
	}
	return tables, warnings, nil
}

func (e *DocumentExtractor) mealGrids(path string) (map[string]models.Grid, error) {
	grids := make(map[string]models.Grid, len(MealOrder))
	switch e.Options.MenuFormat {
	case MenuSpreadsheet:
		wb, err := parser.OpenWorkbook(path)
		if err != nil {
			return nil, err
		}
		defer wb.Close()

		markers := make(map[string]string, len(MealOrder))
		days := 0
		for _, meal := range MealOrder {
			src := e.Options.Meals[meal]
			markers[meal] = src.Marker
			days = max(days, len(src.Params.Days))
		}
		sources, err := wb.MealTables(e.Options.MenuSheet, markers, days, e.Options.TableDetection)
		if err != nil {
			return nil, err
		}
		for meal, src := range sources {
			if grids[meal], err = parser.NormalizeGrid(path, src); err != nil {
				return nil, err
			}
		}
	case MenuPresentation, "":
		deck, err := parser.OpenDeck(path)
		if err != nil {
			return nil, err
		}
		defer deck.Close()

		for _, meal := range MealOrder {
			src, err := deck.Table(e.Options.Meals[meal].Slide)
			if err != nil {
				return nil, err
			}
			if grids[meal], err = parser.NormalizeGrid(path, src); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown menu format %q", e.Options.MenuFormat)
	}
	return grids, nil
}

func (e *DocumentExtractor) extractSnacks(path string) (models.SnackSet, error) {
	doc, err := parser.OpenPDF(path)
	if err != nil {
		return models.SnackSet{}, err
	}
	defer doc.Close()
	return parser.ExtractSnacks(path, doc, e.Options.Snacks)
}

// assemble composes the weekly record.
func assemble(week models.Date, ex *Extraction) *models.WeeklyScheduleRecord {
	return &models.WeeklyScheduleRecord{
		StartDate:     week,
		CommunityTime: ex.CommunityTime,
		AODs:          ex.AODs,
		Menu:          ex.Menu,
		Snacks:        ex.Snacks,
	}
}
