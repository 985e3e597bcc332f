package models

// DailySummary is the per-day slice of a WeeklyScheduleRecord handed to the
// bulletin renderer.
type DailySummary struct {
	StdDate        string            `json:"stddate"`
	CommunityTime  CommunityTimeGrid `json:"community_time"`
	DaysAfterThis  int               `json:"days_after_this"`
	AOD            string            `json:"aod"`
	WeekdayEnglish string            `json:"weekday_english"`
	WeekdayChinese string            `json:"weekday_chinese"`
	WeekdaysAbbrev []string          `json:"weekdays_abbrev"`
	DayOfCycle     string            `json:"day_of_cycle"`
	TodayBreakfast []CategoryItems   `json:"today_breakfast"`
	TodayLunch     []CategoryItems   `json:"today_lunch"`
	TodayDinner    []CategoryItems   `json:"today_dinner"`
	// NextBreakfast is nil when tomorrow is outside the week.
	NextBreakfast []CategoryItems `json:"next_breakfast"`
	TodaySnack    DaySnack        `json:"today_snack"`
}
