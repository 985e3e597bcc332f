package models

// WindowItems holds the items of one category window for one day, in
// single-language form.
type WindowItems struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// DayColumn is one day's worth of category windows.
type DayColumn struct {
	Day     string        `json:"day"`
	Windows []WindowItems `json:"windows"`
}

// MealTable is a single-language meal table: day -> category -> ordered items.
type MealTable struct {
	Days []DayColumn `json:"days"`
}

// BilingualItem pairs the same text in two languages.
type BilingualItem struct {
	Primary   string `json:"primary_language_text"`
	Secondary string `json:"secondary_language_text"`
}

// CategoryItems is an ordered list of bilingual items for one category.
type CategoryItems struct {
	Category string          `json:"category"`
	Items    []BilingualItem `json:"items"`
}

// DayMenu lists the categories served on one day.
type DayMenu struct {
	Day        string          `json:"day"`
	Categories []CategoryItems `json:"categories"`
}

// MealMenu is the merged bilingual table for one meal.
type MealMenu struct {
	Days []DayMenu `json:"days"`
}

// ForDay returns the categories for day index i (0 = Monday).
func (m MealMenu) ForDay(i int) ([]CategoryItems, bool) {
	if i < 0 || i >= len(m.Days) {
		return nil, false
	}
	return m.Days[i].Categories, true
}

// Menu holds the three meals of a week.
type Menu struct {
	Breakfast MealMenu `json:"breakfast"`
	Lunch     MealMenu `json:"lunch"`
	Dinner    MealMenu `json:"dinner"`
}

// Meal returns the menu for a meal name ("breakfast", "lunch", "dinner").
func (m *Menu) Meal(name string) *MealMenu {
	switch name {
	case MealBreakfast:
		return &m.Breakfast
	case MealLunch:
		return &m.Lunch
	case MealDinner:
		return &m.Dinner
	}
	return nil
}

// Meal names.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)
