// Package catalog holds the task definitions driving the daily routine:
// which tasks exist, on which days and in which period they apply, and their
// deadlines. The catalog is read-mostly; definitions are bulk-loaded
// out-of-band and consumed by every other component.
package catalog

import (
	"strings"
	"time"

	"github.com/example/routine-bot/internal/calendar"
)

// Kind discriminates regular checklist tasks from weekly duties.
type Kind string

const (
	// KindRegular tasks are completed daily and tracked in the ledger.
	KindRegular Kind = "regular"
	// KindDuty tasks are weekly responsibilities assigned to one employee.
	// They carry no deadline and never enter the completion ledger.
	KindDuty Kind = "duty"
)

// Period groups tasks into morning and evening sections of the schedule.
type Period string

const (
	PeriodMorning Period = "morning"
	PeriodEvening Period = "evening"
	PeriodNone    Period = ""
)

// Task is a single definition from the task base.
type Task struct {
	ID       string
	Name     string
	Kind     Kind
	Days     DaySet
	Period   Period
	Deadline *calendar.TimeOfDay
	AsanaURL string
	Comments string
}

// DaySet restricts a task to specific weekdays. The zero value (no explicit
// days) means the task applies every day.
type DaySet struct {
	all  bool
	days map[string]struct{}
}

// AllDays returns the set covering every weekday.
func AllDays() DaySet {
	return DaySet{all: true}
}

// Days builds a set from weekday names, case-insensitively.
func Days(names ...string) DaySet {
	set := DaySet{days: make(map[string]struct{}, len(names))}
	for _, name := range names {
		set.days[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return set
}

// Contains reports whether the set applies on the named weekday.
func (s DaySet) Contains(weekday string) bool {
	if s.all {
		return true
	}
	_, ok := s.days[strings.ToLower(weekday)]
	return ok
}

// Catalog is an ordered collection of task definitions. Iteration order is
// the insertion order of the underlying document, which fixes the message
// layout; tasks are never re-sorted by name or deadline.
type Catalog struct {
	tasks  []Task
	byName map[string]int
}

// New builds a catalog preserving the given order. Task names must be unique
// case-insensitively; the caller validates documents before construction.
func New(tasks []Task) *Catalog {
	c := &Catalog{
		tasks:  make([]Task, len(tasks)),
		byName: make(map[string]int, len(tasks)),
	}
	copy(c.tasks, tasks)
	for i, task := range c.tasks {
		key := strings.ToLower(task.Name)
		if _, exists := c.byName[key]; !exists {
			c.byName[key] = i
		}
	}
	return c
}

// Tasks returns every definition in catalog order.
func (c *Catalog) Tasks() []Task {
	if c == nil {
		return nil
	}
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Len reports the number of definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tasks)
}

// ByName looks a task up by name, case-insensitively.
func (c *Catalog) ByName(name string) (Task, bool) {
	if c == nil {
		return Task{}, false
	}
	idx, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Task{}, false
	}
	return c.tasks[idx], true
}

// TasksFor filters the regular tasks applicable on date, optionally narrowed
// to a single period. Unknown periods simply yield an empty sequence.
func (c *Catalog) TasksFor(date time.Time, cal calendar.Calendar, period ...Period) []Task {
	if c == nil {
		return nil
	}
	weekday := cal.WeekdayName(date)
	var filter *Period
	if len(period) > 0 {
		filter = &period[0]
	}

	out := make([]Task, 0, len(c.tasks))
	for _, task := range c.tasks {
		if task.Kind != KindRegular {
			continue
		}
		if !task.Days.Contains(weekday) {
			continue
		}
		if filter != nil && task.Period != *filter {
			continue
		}
		out = append(out, task)
	}
	return out
}

// DutyTasksFor filters the duty tasks applicable on date, ignoring periods.
func (c *Catalog) DutyTasksFor(date time.Time, cal calendar.Calendar) []Task {
	if c == nil {
		return nil
	}
	weekday := cal.WeekdayName(date)
	out := make([]Task, 0)
	for _, task := range c.tasks {
		if task.Kind != KindDuty {
			continue
		}
		if !task.Days.Contains(weekday) {
			continue
		}
		out = append(out, task)
	}
	return out
}

// GroupByPeriod splits tasks into morning, evening and no-period buckets
// while keeping catalog order inside each bucket.
func GroupByPeriod(tasks []Task) (morning, evening, ungrouped []Task) {
	for _, task := range tasks {
		switch task.Period {
		case PeriodMorning:
			morning = append(morning, task)
		case PeriodEvening:
			evening = append(evening, task)
		default:
			ungrouped = append(ungrouped, task)
		}
	}
	return morning, evening, ungrouped
}
