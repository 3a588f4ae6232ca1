package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/catalog"
	"github.com/example/routine-bot/internal/composer"
)

// ScheduleOptions carries message-shaping configuration.
type ScheduleOptions struct {
	// TeamMention is appended to reminder messages, e.g. a user-group handle.
	TeamMention string
	// ReminderHour is the early-afternoon reminder slot during which tasks
	// with late deadlines are not yet nagged about.
	ReminderHour int
	// LateCutoffHour is the deadline hour from which a task counts as "late"
	// for the early reminder slot.
	LateCutoffHour int
}

// ScheduleService builds the outgoing schedule messages for one operating
// mode by snapshotting the catalog, directory, ledger and rotation state and
// handing the result to the pure composer.
type ScheduleService struct {
	mode      Mode
	catalog   CatalogSource
	directory *DirectoryService
	rotation  *RotationService
	ledger    *LedgerService
	remote    *RemoteService
	cal       calendar.Calendar
	opts      ScheduleOptions
	logger    *slog.Logger
}

// NewScheduleService wires a per-mode schedule composer facade.
func NewScheduleService(mode Mode, catalogSource CatalogSource, directory *DirectoryService, rotation *RotationService, ledger *LedgerService, remote *RemoteService, cal calendar.Calendar, opts ScheduleOptions, logger *slog.Logger) *ScheduleService {
	if opts.ReminderHour == 0 {
		opts.ReminderHour = 13
	}
	if opts.LateCutoffHour == 0 {
		opts.LateCutoffHour = 16
	}
	return &ScheduleService{
		mode:      mode,
		catalog:   catalogSource,
		directory: directory,
		rotation:  rotation,
		ledger:    ledger,
		remote:    remote,
		cal:       cal,
		opts:      opts,
		logger:    defaultLogger(logger),
	}
}

// ComposeDaily renders the Tuesday-to-Friday schedule message for the date.
func (s *ScheduleService) ComposeDaily(ctx context.Context, date time.Time) (string, error) {
	in, err := s.dailyInput(ctx, date)
	if err != nil {
		return "", err
	}
	return composer.Daily(in), nil
}

// ComposeWeekly renders the Monday message: week banner, duty assignments,
// the day's tasks and the duty task definitions.
func (s *ScheduleService) ComposeWeekly(ctx context.Context, date time.Time) (string, error) {
	in, err := s.dailyInput(ctx, date)
	if err != nil {
		return "", err
	}

	weekMonday := s.cal.MondayOf(date)
	assignments, err := s.rotation.AssignmentsFor(ctx, weekMonday)
	if err != nil {
		return "", err
	}
	duties := make([]composer.DutyView, 0, 5)
	for _, dutyType := range catalog.DutyTypes() {
		duties = append(duties, composer.DutyView{Type: dutyType, Assignee: assignments[dutyType]})
	}

	cat, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	return composer.Weekly(composer.WeeklyInput{
		DailyInput: in,
		WeekDates:  s.cal.WeekDates(weekMonday),
		Duties:     duties,
		DutyTasks:  cat.DutyTasksFor(date, s.cal),
	}), nil
}

// ComposeReminder renders the unfinished-task escalation for the instant,
// empty when nothing remains. During the early reminder slot, tasks whose
// deadline is still far off are left alone.
func (s *ScheduleService) ComposeReminder(ctx context.Context, now time.Time) (string, error) {
	cat, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	completed, err := s.ledger.CompletedTasks(ctx, now)
	if err != nil {
		return "", err
	}

	local := now.In(s.cal.Location())
	var overdue, incomplete []catalog.Task
	for _, task := range cat.TasksFor(now, s.cal) {
		if _, done := completed[strings.ToUpper(task.Name)]; done {
			continue
		}
		if task.Deadline == nil {
			incomplete = append(incomplete, task)
			continue
		}
		if local.Hour() == s.opts.ReminderHour && task.Deadline.Hour >= s.opts.LateCutoffHour {
			continue
		}
		if now.After(s.cal.At(now, *task.Deadline)) {
			overdue = append(overdue, task)
		} else {
			incomplete = append(incomplete, task)
		}
	}

	return composer.Reminder(composer.ReminderInput{
		Now:         now,
		Calendar:    s.cal,
		Overdue:     overdue,
		Incomplete:  incomplete,
		TeamMention: s.opts.TeamMention,
	}), nil
}

// ComposeRemoteSummary renders next week's remote-day overview.
func (s *ScheduleService) ComposeRemoteSummary(ctx context.Context, today time.Time) (string, error) {
	if s.remote == nil {
		return "", fmt.Errorf("remote service not configured")
	}

	nextMonday := s.cal.MondayOf(today).AddDate(0, 0, 7)
	days := make([]composer.RemoteDay, 0, 5)
	for i, dm := range s.cal.WeekDates(nextMonday) {
		employees, err := s.remote.RemoteEmployeesFor(ctx, dm)
		if err != nil {
			return "", err
		}
		days = append(days, composer.RemoteDay{
			Weekday: nextMonday.AddDate(0, 0, i).Weekday().String(),
			Date:    dm,
			Remote:  mentionsFor(employees),
		})
	}

	return composer.RemoteSummary(composer.RemoteSummaryInput{Days: days}), nil
}

func (s *ScheduleService) dailyInput(ctx context.Context, date time.Time) (composer.DailyInput, error) {
	cat, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return composer.DailyInput{}, err
	}

	completed, err := s.ledger.CompletedTasks(ctx, date)
	if err != nil {
		return composer.DailyInput{}, err
	}
	assignments, err := s.directory.TaskAssignments(ctx)
	if err != nil {
		return composer.DailyInput{}, err
	}

	morning, evening, ungrouped := catalog.GroupByPeriod(cat.TasksFor(date, s.cal))
	view := func(tasks []catalog.Task) []composer.TaskView {
		views := make([]composer.TaskView, 0, len(tasks))
		for _, task := range tasks {
			key := strings.ToUpper(task.Name)
			v := composer.TaskView{Task: task, AssignedTo: assignments[key]}
			if record, done := completed[key]; done {
				v.CompletedBy = record.User
			}
			views = append(views, v)
		}
		return views
	}

	morningEmployees, err := s.directory.EmployeesFor(ctx, date, catalog.PeriodMorning)
	if err != nil {
		return composer.DailyInput{}, err
	}
	eveningEmployees, err := s.directory.EmployeesFor(ctx, date, catalog.PeriodEvening)
	if err != nil {
		return composer.DailyInput{}, err
	}

	special, err := s.directory.SpecialDateFor(ctx, date)
	if err != nil {
		return composer.DailyInput{}, err
	}

	return composer.DailyInput{
		Date:             date,
		Calendar:         s.cal,
		Debug:            s.mode.IsDebug(),
		Special:          special,
		Morning:          view(morning),
		Evening:          view(evening),
		Ungrouped:        view(ungrouped),
		MorningEmployees: mentionsFor(morningEmployees),
		EveningEmployees: mentionsFor(eveningEmployees),
	}, nil
}

func mentionsFor(employees []Employee) []composer.Mention {
	if len(employees) == 0 {
		return nil
	}
	mentions := make([]composer.Mention, 0, len(employees))
	for _, emp := range employees {
		mentions = append(mentions, composer.Mention{Name: emp.Name, ChatUserID: emp.ChatUserID})
	}
	return mentions
}
