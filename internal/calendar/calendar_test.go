package calendar

import (
	"testing"
	"time"
)

func mustCalendar(t *testing.T) Calendar {
	t.Helper()
	cal, err := New("Europe/Riga")
	if err != nil {
		t.Fatalf("failed to load calendar: %v", err)
	}
	return cal
}

func TestCalendar_MondayOf(t *testing.T) {
	t.Parallel()
	cal := mustCalendar(t)

	// 2025-06-02 is a Monday.
	monday := time.Date(2025, time.June, 2, 0, 0, 0, 0, cal.Location())

	cases := []struct {
		name string
		in   time.Time
	}{
		{"monday itself", monday},
		{"tuesday", monday.AddDate(0, 0, 1)},
		{"friday", monday.AddDate(0, 0, 4)},
		{"saturday", monday.AddDate(0, 0, 5)},
		{"sunday", monday.AddDate(0, 0, 6)},
		{"midweek with clock time", time.Date(2025, time.June, 4, 18, 30, 0, 0, cal.Location())},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := cal.MondayOf(tc.in)
			if !got.Equal(monday) {
				t.Fatalf("MondayOf(%v) = %v, want %v", tc.in, got, monday)
			}
			if got.Weekday() != time.Monday {
				t.Fatalf("MondayOf result is %v, not Monday", got.Weekday())
			}
		})
	}
}

func TestCalendar_IsWeekday(t *testing.T) {
	t.Parallel()
	cal := mustCalendar(t)

	monday := time.Date(2025, time.June, 2, 12, 0, 0, 0, cal.Location())
	for offset := 0; offset < 7; offset++ {
		day := monday.AddDate(0, 0, offset)
		want := offset < 5
		if got := cal.IsWeekday(day); got != want {
			t.Errorf("IsWeekday(%s) = %v, want %v", day.Weekday(), got, want)
		}
	}
}

func TestCalendar_WeekDates(t *testing.T) {
	t.Parallel()
	cal := mustCalendar(t)

	monday := time.Date(2025, time.June, 2, 0, 0, 0, 0, cal.Location())
	want := []DayMonth{"02/06", "03/06", "04/06", "05/06", "06/06"}

	got := cal.WeekDates(monday)
	if len(got) != 5 {
		t.Fatalf("WeekDates returned %d entries, want 5", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("WeekDates[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	// Any day of the week normalises to the same Monday.
	fromThursday := cal.WeekDates(monday.AddDate(0, 0, 3))
	for i := range want {
		if fromThursday[i] != want[i] {
			t.Fatalf("WeekDates from Thursday diverged at %d: %s", i, fromThursday[i])
		}
	}
}

func TestCalendar_NearestFuture(t *testing.T) {
	t.Parallel()
	cal := mustCalendar(t)

	today := time.Date(2025, time.June, 2, 10, 0, 0, 0, cal.Location())

	cases := []struct {
		name    string
		dm      DayMonth
		want    time.Time
		wantErr bool
	}{
		{"later this year", "25/12", time.Date(2025, time.December, 25, 0, 0, 0, 0, cal.Location()), false},
		{"already passed rolls to next year", "01/01", time.Date(2026, time.January, 1, 0, 0, 0, 0, cal.Location()), false},
		{"today counts as future", "02/06", time.Date(2025, time.June, 2, 0, 0, 0, 0, cal.Location()), false},
		{"nonexistent day", "31/02", time.Time{}, true},
		{"malformed", "abc", time.Time{}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := cal.NearestFuture(tc.dm, today)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NearestFuture(%s) succeeded with %v, want error", tc.dm, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NearestFuture(%s) failed: %v", tc.dm, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("NearestFuture(%s) = %v, want %v", tc.dm, got, tc.want)
			}
		})
	}
}

func TestParseDayMonth(t *testing.T) {
	t.Parallel()

	valid := []string{"01/01", "31/12", "9/6", " 15/07 "}
	for _, s := range valid {
		if _, err := ParseDayMonth(s); err != nil {
			t.Errorf("ParseDayMonth(%q) failed: %v", s, err)
		}
	}

	if dm, _ := ParseDayMonth("9/6"); dm != "09/06" {
		t.Errorf("ParseDayMonth(\"9/6\") = %q, want zero-padded key", dm)
	}

	invalid := []string{"", "32/01", "01/13", "1-2", "01/01/2025", "aa/bb"}
	for _, s := range invalid {
		if _, err := ParseDayMonth(s); err == nil {
			t.Errorf("ParseDayMonth(%q) succeeded, want error", s)
		}
	}
}

func TestFormatDayMonth(t *testing.T) {
	t.Parallel()

	got := FormatDayMonth(time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC))
	if got != "02/06" {
		t.Fatalf("FormatDayMonth = %s, want 02/06", got)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tod, err := ParseTimeOfDay("16:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay failed: %v", err)
	}
	if tod.Hour != 16 || tod.Minute != 30 {
		t.Fatalf("ParseTimeOfDay = %+v, want 16:30", tod)
	}
	if tod.String() != "16:30" {
		t.Fatalf("String = %s, want 16:30", tod.String())
	}

	for _, s := range []string{"", "24:00", "12:60", "noon", "12", "12:5:0"} {
		if _, err := ParseTimeOfDay(s); err == nil {
			t.Errorf("ParseTimeOfDay(%q) succeeded, want error", s)
		}
	}
}

func TestCalendar_At(t *testing.T) {
	t.Parallel()
	cal := mustCalendar(t)

	date := time.Date(2025, time.June, 4, 23, 45, 0, 0, cal.Location())
	got := cal.At(date, TimeOfDay{Hour: 16, Minute: 0})
	want := time.Date(2025, time.June, 4, 16, 0, 0, 0, cal.Location())
	if !got.Equal(want) {
		t.Fatalf("At = %v, want %v", got, want)
	}
}
