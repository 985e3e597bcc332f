package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of Date.
const DateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// ParseDate parses a YYYY-MM-DD string in loc.
func ParseDate(s string, loc *time.Location) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.Format(DateLayout) }

// Compact formats the date as YYYYMMDD, the form used in file names.
func (d Date) Compact() string { return d.Format("20060102") }

// Equal reports whether both dates name the same calendar day.
func (d Date) Equal(o Date) bool { return d.String() == o.String() }

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date { return Date{d.AddDate(0, 0, n)} }

// DaysSince returns the number of calendar days from start to d.
func (d Date) DaysSince(start Date) int {
	a := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid date %s", b)
	}
	t, err := time.Parse(DateLayout, string(b[1:len(b)-1]))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// CommunityTimeGrid holds canonical activity labels, one row per day and one
// column per cohort. Header row and label column are not included.
type CommunityTimeGrid [][]string

// AODMap holds the assembly-or-duty text for Monday through Thursday.
type AODMap struct {
	Monday    string `json:"monday"`
	Tuesday   string `json:"tuesday"`
	Wednesday string `json:"wednesday"`
	Thursday  string `json:"thursday"`
}

// AODDays lists the weekdays an AODMap covers, in order.
var AODDays = []string{"monday", "tuesday", "wednesday", "thursday"}

// Set assigns the entry for a lower-case weekday name. It reports whether
// the day is one of AODDays.
func (m *AODMap) Set(day, text string) bool {
	switch day {
	case "monday":
		m.Monday = text
	case "tuesday":
		m.Tuesday = text
	case "wednesday":
		m.Wednesday = text
	case "thursday":
		m.Thursday = text
	default:
		return false
	}
	return true
}

// ForDay returns the entry for day index i (0 = Monday).
func (m AODMap) ForDay(i int) (string, bool) {
	switch i {
	case 0:
		return m.Monday, true
	case 1:
		return m.Tuesday, true
	case 2:
		return m.Wednesday, true
	case 3:
		return m.Thursday, true
	}
	return "", false
}

// Missing returns the weekdays that have no entry.
func (m AODMap) Missing() []string {
	var missing []string
	for i, day := range AODDays {
		if v, _ := m.ForDay(i); v == "" {
			missing = append(missing, day)
		}
	}
	return missing
}

// SnackSet holds the bilingual snack lists for the three periods, one item
// per weekday in order.
type SnackSet struct {
	Morning   []BilingualItem `json:"morning"`
	Afternoon []BilingualItem `json:"afternoon"`
	Evening   []BilingualItem `json:"evening"`
}

// DaySnack is the snack of each period on a single day. Nil means none.
type DaySnack struct {
	Morning   *BilingualItem `json:"morning"`
	Afternoon *BilingualItem `json:"afternoon"`
	Evening   *BilingualItem `json:"evening"`
}

// ForDay returns the snacks for day index i (0 = Monday).
func (s SnackSet) ForDay(i int) DaySnack {
	pick := func(items []BilingualItem) *BilingualItem {
		if i < 0 || i >= len(items) {
			return nil
		}
		item := items[i]
		return &item
	}
	return DaySnack{
		Morning:   pick(s.Morning),
		Afternoon: pick(s.Afternoon),
		Evening:   pick(s.Evening),
	}
}

// WeeklyScheduleRecord is the assembled output for one school week.
type WeeklyScheduleRecord struct {
	// StartDate is the Monday that begins the week.
	StartDate Date `json:"start_date"`
	// CommunityTime is the community-time grid.
	CommunityTime CommunityTimeGrid `json:"community_time"`
	// AODs maps Monday..Thursday to their AOD text.
	AODs AODMap `json:"aods"`
	// Menu is the bilingual weekly menu.
	Menu Menu `json:"menu"`
	// Snacks is the bilingual snack set.
	Snacks SnackSet `json:"snacks"`
}

// CommunityTimeFrom returns the community-time rows from day index i to the
// end of the week.
func (r *WeeklyScheduleRecord) CommunityTimeFrom(i int) CommunityTimeGrid {
	if i < 0 || i >= len(r.CommunityTime) {
		return CommunityTimeGrid{}
	}
	return r.CommunityTime[i:]
}
