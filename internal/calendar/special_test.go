package calendar

import (
	"testing"
	"time"
)

func TestSpecialDates_For(t *testing.T) {
	t.Parallel()
	cal := mustCalendar(t)

	dates := SpecialDates{
		"25/12": {Kind: SpecialChristmas, Description: "Merry Christmas"},
		"01/01": {Kind: SpecialNewYear, Description: "Happy New Year"},
	}

	christmas2025 := time.Date(2025, time.December, 25, 9, 0, 0, 0, cal.Location())
	special, ok := dates.For(christmas2025, cal)
	if !ok || special.Kind != SpecialChristmas {
		t.Fatalf("For(25/12) = %+v, %v", special, ok)
	}

	// The year is ignored; the same key triggers every year.
	christmas2031 := time.Date(2031, time.December, 25, 9, 0, 0, 0, cal.Location())
	if _, ok := dates.For(christmas2031, cal); !ok {
		t.Fatal("For should ignore the year")
	}

	ordinary := time.Date(2025, time.June, 2, 9, 0, 0, 0, cal.Location())
	if _, ok := dates.For(ordinary, cal); ok {
		t.Fatal("ordinary day should not be special")
	}

	if _, ok := SpecialDates(nil).For(ordinary, cal); ok {
		t.Fatal("empty table should never match")
	}
}
