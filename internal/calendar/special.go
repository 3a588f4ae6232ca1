package calendar

import "time"

// SpecialKind discriminates how a special date changes the schedule header.
type SpecialKind string

const (
	SpecialChristmas SpecialKind = "christmas"
	SpecialNewYear   SpecialKind = "new_year"
	SpecialCustom    SpecialKind = "custom"
)

// SpecialDate marks a day/month as special, year-agnostic.
type SpecialDate struct {
	Kind        SpecialKind
	Description string
}

// SpecialDates maps day keys to their special-date records.
type SpecialDates map[DayMonth]SpecialDate

// For looks up the special date covering t, ignoring the year.
func (s SpecialDates) For(t time.Time, c Calendar) (SpecialDate, bool) {
	if len(s) == 0 {
		return SpecialDate{}, false
	}
	special, ok := s[FormatDayMonth(t.In(c.Location()))]
	return special, ok
}
