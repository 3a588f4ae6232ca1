// Package calendar provides timezone-aware date arithmetic for the routine
// engine. All computations resolve to a single fixed civil timezone; callers
// never deal with location conversions themselves.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Calendar performs date computations in one fixed location.
type Calendar struct {
	loc *time.Location
}

// New loads the named timezone and returns a calendar bound to it.
func New(timezone string) (Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Calendar{}, fmt.Errorf("calendar: unknown timezone %q: %w", timezone, err)
	}
	return Calendar{loc: loc}, nil
}

// Location exposes the fixed location for callers that need to localise
// instants before comparisons.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DayOf truncates the instant to civil midnight in the calendar's zone.
func (c Calendar) DayOf(t time.Time) time.Time {
	local := t.In(c.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location())
}

// MondayOf returns the Monday of the ISO week containing t.
func (c Calendar) MondayOf(t time.Time) time.Time {
	day := c.DayOf(t)
	// In Go, Monday == 1 and Sunday == 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekdayName returns the English weekday name for t.
func (c Calendar) WeekdayName(t time.Time) string {
	return t.In(c.Location()).Weekday().String()
}

// IsWeekday reports whether t falls on Monday through Friday.
func (c Calendar) IsWeekday(t time.Time) bool {
	switch t.In(c.Location()).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// WeekDates returns the Monday-to-Friday day keys of the week starting at
// monday. The argument is normalised to its own Monday first, so any day of
// the target week is accepted.
func (c Calendar) WeekDates(monday time.Time) []DayMonth {
	start := c.MondayOf(monday)
	dates := make([]DayMonth, 0, 5)
	for i := 0; i < 5; i++ {
		dates = append(dates, FormatDayMonth(start.AddDate(0, 0, i)))
	}
	return dates
}

// At combines a civil date with a time of day in the calendar's zone.
func (c Calendar) At(date time.Time, tod TimeOfDay) time.Time {
	day := c.DayOf(date)
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour, tod.Minute, 0, 0, c.Location())
}

// NearestFuture resolves a year-agnostic day key to a concrete date: the
// occurrence in today's year when it has not yet passed, otherwise the same
// day next year. Today itself counts as a future occurrence.
func (c Calendar) NearestFuture(dm DayMonth, today time.Time) (time.Time, error) {
	day, month, err := dm.split()
	if err != nil {
		return time.Time{}, err
	}
	ref := c.DayOf(today)
	candidate := time.Date(ref.Year(), time.Month(month), day, 0, 0, 0, 0, c.Location())
	if candidate.Before(ref) {
		candidate = time.Date(ref.Year()+1, time.Month(month), day, 0, 0, 0, 0, c.Location())
	}
	if candidate.Day() != day || candidate.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("calendar: day %q does not exist", dm)
	}
	return candidate, nil
}

// DayMonth is a year-agnostic "dd/mm" day key. The same key re-triggers every
// year on that day and month.
type DayMonth string

// FormatDayMonth renders the day key for t.
func FormatDayMonth(t time.Time) DayMonth {
	return DayMonth(fmt.Sprintf("%02d/%02d", t.Day(), int(t.Month())))
}

// ParseDayMonth validates a "dd/mm" key and returns its zero-padded form,
// so parsed keys always compare equal to FormatDayMonth output.
func ParseDayMonth(s string) (DayMonth, error) {
	dm := DayMonth(strings.TrimSpace(s))
	day, month, err := dm.split()
	if err != nil {
		return "", err
	}
	return DayMonth(fmt.Sprintf("%02d/%02d", day, month)), nil
}

func (d DayMonth) split() (day, month int, err error) {
	parts := strings.Split(string(d), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("calendar: malformed day key %q", d)
	}
	day, err = strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("calendar: malformed day key %q", d)
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("calendar: malformed day key %q", d)
	}
	return day, month, nil
}

// TimeOfDay is a wall-clock time without a date, used for task deadlines.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("calendar: malformed time of day %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("calendar: malformed time of day %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("calendar: malformed time of day %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String renders the canonical "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
