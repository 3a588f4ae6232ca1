package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/catalog"
	"github.com/example/routine-bot/internal/persistence"
)

// TaskBaseRepository captures the persistence interactions needed to read
// the task catalog document.
type TaskBaseRepository interface {
	LoadTaskBase(ctx context.Context) ([]persistence.TaskRecord, error)
}

// CatalogService loads and validates the task catalog. The catalog may be
// edited out-of-band at any time, so consumers take a fresh snapshot per
// operation instead of holding a parsed copy.
type CatalogService struct {
	tasks  TaskBaseRepository
	logger *slog.Logger
}

// NewCatalogService wires dependencies for catalog reads.
func NewCatalogService(tasks TaskBaseRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{tasks: tasks, logger: defaultLogger(logger)}
}

// Snapshot loads the current catalog document. A document with any invalid
// entry fails entirely; a partially-valid catalog would silently drop or
// duplicate tasks in the completion matcher.
func (s *CatalogService) Snapshot(ctx context.Context) (*catalog.Catalog, error) {
	if s == nil || s.tasks == nil {
		return nil, fmt.Errorf("catalog repository not configured")
	}

	records, err := s.tasks.LoadTaskBase(ctx)
	if errors.Is(err, persistence.ErrNotFound) {
		return catalog.New(nil), nil
	}
	if err != nil {
		return nil, err
	}

	tasks, vErr := decodeTaskRecords(records)
	if vErr.HasErrors() {
		serviceLogger(ctx, s.logger, "catalog", "snapshot").
			ErrorContext(ctx, "task base document rejected", "error_kind", ErrorKind(vErr), "fields", len(vErr.FieldErrors))
		return nil, vErr
	}

	return catalog.New(tasks), nil
}

func decodeTaskRecords(records []persistence.TaskRecord) ([]catalog.Task, *ValidationError) {
	vErr := &ValidationError{}
	tasks := make([]catalog.Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i, record := range records {
		field := func(name string) string { return fmt.Sprintf("tasks[%d].%s", i, name) }

		name := strings.TrimSpace(record.Name)
		if name == "" {
			vErr.add(field("name"), "name is required")
			continue
		}
		nameKey := strings.ToLower(name)
		if _, dup := seen[nameKey]; dup {
			vErr.add(field("name"), fmt.Sprintf("duplicate task name %q", name))
			continue
		}
		seen[nameKey] = struct{}{}

		task := catalog.Task{
			ID:       strings.TrimSpace(record.ID),
			Name:     name,
			AsanaURL: strings.TrimSpace(record.AsanaURL),
			Comments: strings.TrimSpace(record.Comments),
		}
		if task.ID == "" {
			vErr.add(field("id"), "id is required")
		}

		switch strings.ToLower(strings.TrimSpace(record.Type)) {
		case "", "regular":
			task.Kind = catalog.KindRegular
		case "duty":
			task.Kind = catalog.KindDuty
		default:
			vErr.add(field("type"), fmt.Sprintf("unknown task type %q", record.Type))
			continue
		}

		days, err := parseDaySet(record.Days)
		if err != nil {
			vErr.add(field("days"), err.Error())
		} else {
			task.Days = days
		}

		switch catalog.Period(strings.ToLower(strings.TrimSpace(record.Period))) {
		case catalog.PeriodMorning:
			task.Period = catalog.PeriodMorning
		case catalog.PeriodEvening:
			task.Period = catalog.PeriodEvening
		case catalog.PeriodNone:
			task.Period = catalog.PeriodNone
		default:
			vErr.add(field("period"), fmt.Sprintf("unknown period %q", record.Period))
		}

		if deadline := strings.TrimSpace(record.Deadline); deadline != "" {
			if task.Kind == catalog.KindDuty {
				vErr.add(field("deadline"), "duty tasks carry no deadline")
			} else {
				tod, err := calendar.ParseTimeOfDay(deadline)
				if err != nil {
					vErr.add(field("deadline"), err.Error())
				} else {
					task.Deadline = &tod
				}
			}
		}

		tasks = append(tasks, task)
	}

	return tasks, vErr
}

var weekdayNames = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

func parseDaySet(days string) (catalog.DaySet, error) {
	trimmed := strings.ToLower(strings.TrimSpace(days))
	if trimmed == "" || trimmed == "all" {
		return catalog.AllDays(), nil
	}

	names := make([]string, 0, 5)
	for _, part := range strings.Split(trimmed, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := weekdayNames[name]; !ok {
			return catalog.DaySet{}, fmt.Errorf("unknown weekday %q", name)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return catalog.DaySet{}, fmt.Errorf("day list %q has no weekdays", days)
	}
	return catalog.Days(names...), nil
}
