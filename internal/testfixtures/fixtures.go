// Package testfixtures provides deterministic records, a controllable clock
// and an in-memory document store for package tests.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/persistence"
)

var (
	taskCounter     uint64
	employeeCounter uint64
)

// RigaCalendar returns the calendar the fixtures are anchored to.
func RigaCalendar() calendar.Calendar {
	cal, err := calendar.New("Europe/Riga")
	if err != nil {
		panic(err)
	}
	return cal
}

// ReferenceTime returns the canonical baseline timestamp used by fixtures:
// a Monday morning in the bot's timezone.
func ReferenceTime() time.Time {
	return time.Date(2025, time.June, 2, 9, 0, 0, 0, RigaCalendar().Location())
}

// TaskOption configures a generated task record.
type TaskOption func(*persistence.TaskRecord)

// NewTaskRecord returns a deterministic everyday task record with optional
// overrides.
func NewTaskRecord(opts ...TaskOption) persistence.TaskRecord {
	idx := atomic.AddUint64(&taskCounter, 1)
	record := persistence.TaskRecord{
		ID:   fmt.Sprintf("task-%03d", idx),
		Name: fmt.Sprintf("Task %03d", idx),
		Days: "all",
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithTaskName overrides the generated task name.
func WithTaskName(name string) TaskOption {
	return func(r *persistence.TaskRecord) {
		r.Name = name
	}
}

// WithTaskDays sets the days field ("all" or a comma list of weekday names).
func WithTaskDays(days string) TaskOption {
	return func(r *persistence.TaskRecord) {
		r.Days = days
	}
}

// WithTaskPeriod sets the morning/evening grouping.
func WithTaskPeriod(period string) TaskOption {
	return func(r *persistence.TaskRecord) {
		r.Period = period
	}
}

// WithTaskDeadline sets the "HH:MM" deadline.
func WithTaskDeadline(deadline string) TaskOption {
	return func(r *persistence.TaskRecord) {
		r.Deadline = deadline
	}
}

// WithTaskType sets the task type ("regular" or "duty").
func WithTaskType(taskType string) TaskOption {
	return func(r *persistence.TaskRecord) {
		r.Type = taskType
	}
}

// WithTaskAsanaURL sets the tracker link.
func WithTaskAsanaURL(url string) TaskOption {
	return func(r *persistence.TaskRecord) {
		r.AsanaURL = url
	}
}

// WithTaskComments sets the free-form comments line.
func WithTaskComments(comments string) TaskOption {
	return func(r *persistence.TaskRecord) {
		r.Comments = comments
	}
}

// EmployeeOption configures a generated employee record.
type EmployeeOption func(*persistence.EmployeeRecord)

// NewEmployeeRecord returns a deterministic employee record with optional
// overrides.
func NewEmployeeRecord(opts ...EmployeeOption) persistence.EmployeeRecord {
	idx := atomic.AddUint64(&employeeCounter, 1)
	record := persistence.EmployeeRecord{
		ID:       fmt.Sprintf("emp-%03d", idx),
		Name:     fmt.Sprintf("Employee %03d", idx),
		Username: fmt.Sprintf("employee%03d", idx),
		SlackID:  fmt.Sprintf("U%06d", idx),
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithEmployeeName overrides the generated display name.
func WithEmployeeName(name string) EmployeeOption {
	return func(r *persistence.EmployeeRecord) {
		r.Name = name
	}
}

// WithEmployeeUsername overrides the generated username.
func WithEmployeeUsername(username string) EmployeeOption {
	return func(r *persistence.EmployeeRecord) {
		r.Username = username
	}
}

// WithEmployeeSlackID overrides the generated chat user ID.
func WithEmployeeSlackID(id string) EmployeeOption {
	return func(r *persistence.EmployeeRecord) {
		r.SlackID = id
	}
}

// WithMorningDates sets the "dd/mm" dates the employee works mornings.
func WithMorningDates(dates ...string) EmployeeOption {
	return func(r *persistence.EmployeeRecord) {
		r.MorningDates = append([]string(nil), dates...)
	}
}

// WithEveningDates sets the "dd/mm" dates the employee works evenings.
func WithEveningDates(dates ...string) EmployeeOption {
	return func(r *persistence.EmployeeRecord) {
		r.EveningDates = append([]string(nil), dates...)
	}
}
