package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/catalog"
	"github.com/example/routine-bot/internal/persistence"
)

// Mode selects which of the two independent state-engine instances an
// operation belongs to. Production and debug are parameterized instances of
// the same machinery picked once at the entry point; nothing branches on the
// mode internally.
type Mode string

const (
	ModeProduction Mode = "production"
	ModeDebug      Mode = "debug"
)

// StateKey returns the storage key of the mode's daily-state document.
func (m Mode) StateKey() string {
	if m == ModeDebug {
		return persistence.KeyDebugState
	}
	return persistence.KeyProductionState
}

// IsDebug reports whether the mode is the isolated debug instance.
func (m Mode) IsDebug() bool {
	return m == ModeDebug
}

// Employee is a validated directory record.
type Employee struct {
	ID           string
	Name         string
	Username     string
	ChatUserID   string
	MorningDates map[calendar.DayMonth]struct{}
	EveningDates map[calendar.DayMonth]struct{}
}

// PeriodOn reports the period the employee is scheduled for on the given day
// key, if any. A date appears in at most one of the two sets.
func (e Employee) PeriodOn(dm calendar.DayMonth) (catalog.Period, bool) {
	if _, ok := e.MorningDates[dm]; ok {
		return catalog.PeriodMorning, true
	}
	if _, ok := e.EveningDates[dm]; ok {
		return catalog.PeriodEvening, true
	}
	return catalog.PeriodNone, false
}

// ScheduledOn reports whether the employee works on the given day key in
// either period.
func (e Employee) ScheduledOn(dm calendar.DayMonth) bool {
	_, ok := e.PeriodOn(dm)
	return ok
}

// Completion records a successful completion write.
type Completion struct {
	TaskName   string
	ChatUserID string
	At         time.Time
}

// WeekTokenKind enumerates the small closed grammar of week specifiers.
type WeekTokenKind int

const (
	// WeekCurrent resolves to the Monday of the week containing today.
	WeekCurrent WeekTokenKind = iota
	// WeekNext resolves to the Monday one week later.
	WeekNext
	// WeekLiteral is an explicit "dd/mm" date that must itself be a Monday.
	WeekLiteral
)

// WeekToken is a parsed week specifier.
type WeekToken struct {
	Kind    WeekTokenKind
	Literal calendar.DayMonth
}

// ParseWeekToken parses "current", "next" or a literal "dd/mm" token.
func ParseWeekToken(s string) (WeekToken, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "current":
		return WeekToken{Kind: WeekCurrent}, nil
	case "next":
		return WeekToken{Kind: WeekNext}, nil
	}
	dm, err := calendar.ParseDayMonth(s)
	if err != nil {
		return WeekToken{}, fmt.Errorf("%w: %q", ErrInvalidWeekToken, s)
	}
	return WeekToken{Kind: WeekLiteral, Literal: dm}, nil
}
