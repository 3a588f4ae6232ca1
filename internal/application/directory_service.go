package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/catalog"
	"github.com/example/routine-bot/internal/persistence"
)

// DirectoryRepository captures the persistence interactions needed by the
// employee directory.
type DirectoryRepository interface {
	LoadEmployees(ctx context.Context) ([]persistence.EmployeeRecord, error)
}

// SpecialDateRepository reads the year-agnostic special-date table.
type SpecialDateRepository interface {
	LoadSpecialDates(ctx context.Context) (persistence.SpecialDates, error)
}

// TaskAssignmentRepository reads and writes the per-task assignee table.
type TaskAssignmentRepository interface {
	LoadTaskAssignments(ctx context.Context) (persistence.TaskAssignments, error)
	SaveTaskAssignments(ctx context.Context, assignments persistence.TaskAssignments) error
}

// DirectoryService exposes employee, special-date and task-assignment
// lookups on top of the stored directory documents.
type DirectoryService struct {
	employees       DirectoryRepository
	specialDates    SpecialDateRepository
	taskAssignments TaskAssignmentRepository
	cal             calendar.Calendar
	logger          *slog.Logger
}

// NewDirectoryService wires dependencies for directory operations.
func NewDirectoryService(employees DirectoryRepository, specialDates SpecialDateRepository, taskAssignments TaskAssignmentRepository, cal calendar.Calendar, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		employees:       employees,
		specialDates:    specialDates,
		taskAssignments: taskAssignments,
		cal:             cal,
		logger:          defaultLogger(logger),
	}
}

// Employees loads and validates the full directory document. Any invalid
// record rejects the whole document.
func (s *DirectoryService) Employees(ctx context.Context) ([]Employee, error) {
	if s == nil || s.employees == nil {
		return nil, fmt.Errorf("directory repository not configured")
	}

	records, err := s.employees.LoadEmployees(ctx)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	employees, vErr := decodeEmployeeRecords(records)
	if vErr.HasErrors() {
		serviceLogger(ctx, s.logger, "directory", "employees").
			ErrorContext(ctx, "employee document rejected", "error_kind", ErrorKind(vErr), "fields", len(vErr.FieldErrors))
		return nil, vErr
	}
	return employees, nil
}

// EmployeesFor lists the employees scheduled for the given date and period,
// in directory order.
func (s *DirectoryService) EmployeesFor(ctx context.Context, date time.Time, period catalog.Period) ([]Employee, error) {
	employees, err := s.Employees(ctx)
	if err != nil {
		return nil, err
	}

	dm := calendar.FormatDayMonth(date.In(s.cal.Location()))
	out := make([]Employee, 0, len(employees))
	for _, emp := range employees {
		if p, ok := emp.PeriodOn(dm); ok && p == period {
			out = append(out, emp)
		}
	}
	return out, nil
}

// FindByUsername resolves a chat username to the employee record.
func (s *DirectoryService) FindByUsername(ctx context.Context, username string) (Employee, error) {
	employees, err := s.Employees(ctx)
	if err != nil {
		return Employee{}, err
	}

	clean := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(username), "@"))
	for _, emp := range employees {
		if emp.Username == clean {
			return emp, nil
		}
	}
	return Employee{}, fmt.Errorf("%w: username %q", ErrUnknownEmployee, clean)
}

// ByChatID resolves a chat user ID to the employee record.
func (s *DirectoryService) ByChatID(ctx context.Context, chatUserID string) (Employee, error) {
	employees, err := s.Employees(ctx)
	if err != nil {
		return Employee{}, err
	}
	for _, emp := range employees {
		if emp.ChatUserID == chatUserID {
			return emp, nil
		}
	}
	return Employee{}, fmt.Errorf("%w: chat id %q", ErrUnknownEmployee, chatUserID)
}

// SpecialDateFor looks the date up in the special-date table, by day and
// month only.
func (s *DirectoryService) SpecialDateFor(ctx context.Context, date time.Time) (*calendar.SpecialDate, error) {
	if s == nil || s.specialDates == nil {
		return nil, nil
	}

	records, err := s.specialDates.LoadSpecialDates(ctx)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	special, ok := decodeSpecialDates(records).For(date, s.cal)
	if !ok {
		return nil, nil
	}
	return &special, nil
}

// TaskAssignments returns the uppercase task-name → chat user ID table.
func (s *DirectoryService) TaskAssignments(ctx context.Context) (persistence.TaskAssignments, error) {
	if s == nil || s.taskAssignments == nil {
		return persistence.TaskAssignments{}, nil
	}
	assignments, err := s.taskAssignments.LoadTaskAssignments(ctx)
	if errors.Is(err, persistence.ErrNotFound) {
		return persistence.TaskAssignments{}, nil
	}
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// AssignTask records a per-task assignee; an empty chatUserID clears it.
func (s *DirectoryService) AssignTask(ctx context.Context, taskName, chatUserID string) error {
	if s == nil || s.taskAssignments == nil {
		return fmt.Errorf("task assignment repository not configured")
	}

	assignments, err := s.TaskAssignments(ctx)
	if err != nil {
		return err
	}

	key := strings.ToUpper(strings.TrimSpace(taskName))
	if chatUserID == "" {
		delete(assignments, key)
	} else {
		assignments[key] = chatUserID
	}
	return s.taskAssignments.SaveTaskAssignments(ctx, assignments)
}

func decodeSpecialDates(records persistence.SpecialDates) calendar.SpecialDates {
	table := make(calendar.SpecialDates, len(records))
	for key, record := range records {
		special := calendar.SpecialDate{Description: record.Description}
		switch calendar.SpecialKind(strings.ToLower(strings.TrimSpace(record.Type))) {
		case calendar.SpecialChristmas:
			special.Kind = calendar.SpecialChristmas
		case calendar.SpecialNewYear:
			special.Kind = calendar.SpecialNewYear
		default:
			special.Kind = calendar.SpecialCustom
		}
		table[calendar.DayMonth(key)] = special
	}
	return table
}

func decodeEmployeeRecords(records []persistence.EmployeeRecord) ([]Employee, *ValidationError) {
	vErr := &ValidationError{}
	employees := make([]Employee, 0, len(records))

	for i, record := range records {
		field := func(name string) string { return fmt.Sprintf("employees[%d].%s", i, name) }

		emp := Employee{
			ID:           strings.TrimSpace(record.ID),
			Name:         strings.TrimSpace(record.Name),
			Username:     strings.TrimSpace(record.Username),
			ChatUserID:   strings.TrimSpace(record.SlackID),
			MorningDates: make(map[calendar.DayMonth]struct{}, len(record.MorningDates)),
			EveningDates: make(map[calendar.DayMonth]struct{}, len(record.EveningDates)),
		}
		if emp.ID == "" {
			vErr.add(field("id"), "id is required")
		}
		if emp.Name == "" {
			vErr.add(field("name"), "name is required")
		}
		if emp.ChatUserID == "" {
			vErr.add(field("slack_id"), "chat user id is required")
		}

		for _, raw := range record.MorningDates {
			dm, err := calendar.ParseDayMonth(raw)
			if err != nil {
				vErr.add(field("morning_dates"), err.Error())
				continue
			}
			emp.MorningDates[dm] = struct{}{}
		}
		for _, raw := range record.EveningDates {
			dm, err := calendar.ParseDayMonth(raw)
			if err != nil {
				vErr.add(field("evening_dates"), err.Error())
				continue
			}
			if _, both := emp.MorningDates[dm]; both {
				vErr.add(field("evening_dates"), fmt.Sprintf("date %s appears in both periods", dm))
				continue
			}
			emp.EveningDates[dm] = struct{}{}
		}

		employees = append(employees, emp)
	}

	return employees, vErr
}
