package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/catalog"
	"github.com/example/routine-bot/internal/persistence"
)

// DutyAssignmentRepository captures the persistence interactions needed by
// the rotation manager.
type DutyAssignmentRepository interface {
	LoadDutyAssignments(ctx context.Context) (persistence.DutyAssignments, error)
	SaveDutyAssignments(ctx context.Context, assignments persistence.DutyAssignments) error
}

// EmployeeSource resolves chat user IDs to validated employee records.
type EmployeeSource interface {
	ByChatID(ctx context.Context, chatUserID string) (Employee, error)
}

// LiteralYearPolicy selects the year a literal "dd/mm" week token refers to
// when the date is ambiguous across a year boundary.
type LiteralYearPolicy int

const (
	// YearNearestFuture resolves to the next occurrence of the date on or
	// after today. The default.
	YearNearestFuture LiteralYearPolicy = iota
	// YearCurrent always resolves within today's calendar year.
	YearCurrent
)

// eligibleWeekdays is the minimum number of scheduled weekdays (out of the
// five Monday-Friday days) required to hold a duty that week.
const eligibleWeekdays = 3

// RotationService assigns and clears weekly duties, enforcing the
// majority-presence eligibility rule.
type RotationService struct {
	assignments DutyAssignmentRepository
	employees   EmployeeSource
	cal         calendar.Calendar
	now         func() time.Time
	yearPolicy  LiteralYearPolicy
	logger      *slog.Logger

	// mu serializes assignment writes; last write wins by design since
	// assignment is an explicit administrative action.
	mu sync.Mutex
}

// NewRotationService wires dependencies for duty rotation operations.
func NewRotationService(assignments DutyAssignmentRepository, employees EmployeeSource, cal calendar.Calendar, now func() time.Time, logger *slog.Logger) *RotationService {
	if now == nil {
		now = time.Now
	}
	return &RotationService{
		assignments: assignments,
		employees:   employees,
		cal:         cal,
		now:         now,
		yearPolicy:  YearNearestFuture,
		logger:      defaultLogger(logger),
	}
}

// SetLiteralYearPolicy overrides how literal week tokens resolve across year
// boundaries.
func (s *RotationService) SetLiteralYearPolicy(policy LiteralYearPolicy) {
	if s != nil {
		s.yearPolicy = policy
	}
}

// ResolveWeek turns a week token into the concrete Monday it names. Literal
// "dd/mm" tokens must themselves be Mondays; anything else is refused.
func (s *RotationService) ResolveWeek(token string, today time.Time) (time.Time, error) {
	parsed, err := ParseWeekToken(token)
	if err != nil {
		return time.Time{}, err
	}

	switch parsed.Kind {
	case WeekCurrent:
		return s.cal.MondayOf(today), nil
	case WeekNext:
		return s.cal.MondayOf(today).AddDate(0, 0, 7), nil
	}

	date, err := s.resolveLiteral(parsed.Literal, today)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeekToken, token)
	}
	if date.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("%w: %q is not a Monday", ErrInvalidWeekToken, token)
	}
	return date, nil
}

func (s *RotationService) resolveLiteral(dm calendar.DayMonth, today time.Time) (time.Time, error) {
	if s.yearPolicy == YearCurrent {
		ref := s.cal.DayOf(today)
		candidate, err := s.cal.NearestFuture(dm, time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, s.cal.Location()))
		if err != nil {
			return time.Time{}, err
		}
		return candidate, nil
	}
	return s.cal.NearestFuture(dm, today)
}

// Assign records the duty assignee for the week, refusing employees present
// on fewer than three of the week's five weekdays. Replacing an existing
// assignee is allowed; the latest write wins.
func (s *RotationService) Assign(ctx context.Context, dutyType catalog.DutyType, chatUserID string, weekMonday time.Time) error {
	if s == nil || s.assignments == nil {
		return fmt.Errorf("duty assignment repository not configured")
	}

	employee, err := s.employees.ByChatID(ctx, chatUserID)
	if err != nil {
		return err
	}

	scheduled := s.scheduledWeekdays(employee, weekMonday)
	if scheduled < eligibleWeekdays {
		return fmt.Errorf("%w: %s works only %d day(s) that week (minimum %d)",
			ErrNotEligible, employee.Name, scheduled, eligibleWeekdays)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assignments, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	weekKey := s.weekKey(weekMonday)
	if assignments[weekKey] == nil {
		assignments[weekKey] = make(map[string]string)
	}
	assignments[weekKey][string(dutyType)] = chatUserID

	if err := s.assignments.SaveDutyAssignments(ctx, assignments); err != nil {
		return err
	}

	serviceLogger(ctx, s.logger, "rotation", "assign").
		InfoContext(ctx, "duty assigned", "duty", dutyType.Label(), "user", chatUserID, "week", weekKey)
	return nil
}

// Clear removes any assignment for the duty and week. No eligibility check
// is needed to remove; clearing an absent assignment is a no-op.
func (s *RotationService) Clear(ctx context.Context, dutyType catalog.DutyType, weekMonday time.Time) error {
	if s == nil || s.assignments == nil {
		return fmt.Errorf("duty assignment repository not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assignments, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	weekKey := s.weekKey(weekMonday)
	if week, ok := assignments[weekKey]; ok {
		delete(week, string(dutyType))
		if len(week) == 0 {
			delete(assignments, weekKey)
		}
	}

	if err := s.assignments.SaveDutyAssignments(ctx, assignments); err != nil {
		return err
	}

	serviceLogger(ctx, s.logger, "rotation", "clear").
		InfoContext(ctx, "duty cleared", "duty", dutyType.Label(), "week", weekKey)
	return nil
}

// AssignmentsFor returns the assignee of every duty type for the week.
// Unassigned duties are present with an empty value so the composer can
// render explicit placeholders.
func (s *RotationService) AssignmentsFor(ctx context.Context, weekMonday time.Time) (map[catalog.DutyType]string, error) {
	if s == nil || s.assignments == nil {
		return nil, fmt.Errorf("duty assignment repository not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assignments, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	week := assignments[s.weekKey(weekMonday)]
	out := make(map[catalog.DutyType]string, 5)
	for _, dutyType := range catalog.DutyTypes() {
		out[dutyType] = week[string(dutyType)]
	}
	return out, nil
}

func (s *RotationService) scheduledWeekdays(employee Employee, weekMonday time.Time) int {
	count := 0
	for _, dm := range s.cal.WeekDates(weekMonday) {
		if employee.ScheduledOn(dm) {
			count++
		}
	}
	return count
}

func (s *RotationService) weekKey(weekMonday time.Time) string {
	return s.cal.MondayOf(weekMonday).Format("2006-01-02")
}

func (s *RotationService) loadLocked(ctx context.Context) (persistence.DutyAssignments, error) {
	assignments, err := s.assignments.LoadDutyAssignments(ctx)
	if errors.Is(err, persistence.ErrNotFound) {
		return persistence.DutyAssignments{}, nil
	}
	if err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = persistence.DutyAssignments{}
	}
	return assignments, nil
}
