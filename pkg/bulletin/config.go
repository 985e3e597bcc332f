package bulletin

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dailybulletin/bulletin/pkg/bulletin/acquire"
	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk YAML configuration.
type Config struct {
	General      GeneralConfig    `yaml:"general"`
	TheWeekAhead WeekAheadConfig  `yaml:"the_week_ahead"`
	WeeklyMenu   MenuConfig       `yaml:"weekly_menu"`
	Snacks       SnackConfig      `yaml:"snacks"`
	Escalation   EscalationConfig `yaml:"escalation"`
}

// GeneralConfig holds paths and the school's timezone.
type GeneralConfig struct {
	BuildPath string `yaml:"build_path"`
	// Database is the SQLite index path; relative paths are under BuildPath.
	Database string `yaml:"database"`
	Timezone string `yaml:"timezone"`
	// CycleData is a JSON file mapping YYYY-MM-DD to the day of the cycle.
	CycleData string `yaml:"cycle_data"`
}

// WeekAheadConfig describes the weekly announcements deck.
type WeekAheadConfig struct {
	FileURL                 string `yaml:"file_url"`
	CommunityTimePageNumber *int   `yaml:"community_time_page_number"`
	AODPageNumber           *int   `yaml:"aod_page_number"`
	CommunityTimeColumns    int    `yaml:"community_time_columns"`
	CommunityTimeRows       *int   `yaml:"community_time_rows"`
	AllowReducedCohorts     *bool  `yaml:"allow_reduced_cohorts"`
}

// MealConfig overrides the location and categories of one meal table.
type MealConfig struct {
	PageNumber *int     `yaml:"page_number"`
	Marker     string   `yaml:"marker"`
	Categories []string `yaml:"categories"`
}

// MenuConfig describes the two menu documents.
type MenuConfig struct {
	Format       string     `yaml:"format"`
	Sheet        string     `yaml:"sheet"`
	MarkerColumn string     `yaml:"marker_column"`
	PrimaryURL   string     `yaml:"primary_url"`
	SecondaryURL string     `yaml:"secondary_url"`
	Placeholder  string     `yaml:"placeholder"`
	Breakfast    MealConfig `yaml:"breakfast"`
	Lunch        MealConfig `yaml:"lunch"`
	Dinner       MealConfig `yaml:"dinner"`
}

// SnackConfig describes the snack PDF.
type SnackConfig struct {
	FileURL    string `yaml:"file_url"`
	PageNumber int    `yaml:"page_number"`
	Header     string `yaml:"header"`
}

// EscalationConfig selects how manual correction is requested.
type EscalationConfig struct {
	Command []string `yaml:"command"`
	// Signal is "stdin" (press ENTER) or "file" (wait for <document>.done).
	Signal      string        `yaml:"signal"`
	Timeout     time.Duration `yaml:"timeout"`
	EscalateAOD *bool         `yaml:"escalate_aod"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Options converts the configuration into run options, starting from
// DefaultOptions.
func (c *Config) Options() (Options, error) {
	opts := DefaultOptions()

	if c.General.BuildPath != "" {
		opts.BuildDir = c.General.BuildPath
	}
	if c.General.Timezone != "" {
		loc, err := time.LoadLocation(c.General.Timezone)
		if err != nil {
			return Options{}, fmt.Errorf("config: timezone: %w", err)
		}
		opts.Location = loc
	}

	twa := c.TheWeekAhead
	if twa.CommunityTimePageNumber != nil {
		opts.CommunityTimeSlide = *twa.CommunityTimePageNumber
	}
	if twa.AODPageNumber != nil {
		opts.AODSlide = *twa.AODPageNumber
	}
	if twa.CommunityTimeColumns > 0 {
		opts.CommunityTime.Columns = twa.CommunityTimeColumns
	}
	if twa.CommunityTimeRows != nil {
		opts.CommunityTime.Rows = *twa.CommunityTimeRows
	}
	if twa.AllowReducedCohorts != nil {
		opts.CommunityTime.AllowReducedCohorts = *twa.AllowReducedCohorts
	}

	menu := c.WeeklyMenu
	switch MenuFormat(menu.Format) {
	case "":
	case MenuPresentation, MenuSpreadsheet:
		opts.MenuFormat = MenuFormat(menu.Format)
	default:
		return Options{}, fmt.Errorf("config: unknown menu format %q", menu.Format)
	}
	opts.MenuSheet = menu.Sheet
	if menu.MarkerColumn != "" {
		col, err := excelize.ColumnNameToNumber(menu.MarkerColumn)
		if err != nil {
			return Options{}, fmt.Errorf("config: marker column: %w", err)
		}
		opts.TableDetection.MarkerColumn = col - 1
	}
	for meal, mc := range map[string]MealConfig{
		models.MealBreakfast: menu.Breakfast,
		models.MealLunch:     menu.Lunch,
		models.MealDinner:    menu.Dinner,
	} {
		src := opts.Meals[meal]
		if mc.PageNumber != nil {
			src.Slide = *mc.PageNumber
		}
		if mc.Marker != "" {
			src.Marker = mc.Marker
		}
		if len(mc.Categories) > 0 {
			src.Params.Categories = mc.Categories
		}
		if menu.Placeholder != "" {
			src.Params.Placeholder = menu.Placeholder
		}
		opts.Meals[meal] = src
	}

	if c.Snacks.PageNumber > 0 {
		opts.Snacks.Page = c.Snacks.PageNumber
	}
	if c.Snacks.Header != "" {
		opts.Snacks.Header = c.Snacks.Header
	}

	if len(c.Escalation.Command) > 0 {
		opts.EscalateCommand = c.Escalation.Command
	}
	if c.Escalation.EscalateAOD != nil {
		opts.EscalateAOD = *c.Escalation.EscalateAOD
	}
	return opts, nil
}

// DatabasePath returns the SQLite index path.
func (c *Config) DatabasePath(buildDir string) string {
	db := c.General.Database
	if db == "" {
		db = "bulletin.db"
	}
	if filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(buildDir, db)
}

// FetchURLs returns the download URL of each document kind that has one.
func (c *Config) FetchURLs() map[acquire.Kind]string {
	urls := make(map[acquire.Kind]string)
	add := func(kind acquire.Kind, url string) {
		if url != "" {
			urls[kind] = url
		}
	}
	add(acquire.KindWeekAhead, c.TheWeekAhead.FileURL)
	add(acquire.KindMenuPrimary, c.WeeklyMenu.PrimaryURL)
	add(acquire.KindMenuSecondary, c.WeeklyMenu.SecondaryURL)
	add(acquire.KindSnacks, c.Snacks.FileURL)
	return urls
}
