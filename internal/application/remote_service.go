package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/persistence"
)

// RemoteDayRepository captures the persistence interactions needed for
// remote-work tracking.
type RemoteDayRepository interface {
	LoadRemoteDays(ctx context.Context) (persistence.RemoteDays, error)
	SaveRemoteDays(ctx context.Context, days persistence.RemoteDays) error
}

// maxRemoteDays caps self-reported remote days per employee per week.
const maxRemoteDays = 2

// RemoteService tracks self-reported remote-work days per employee and week.
type RemoteService struct {
	remote    RemoteDayRepository
	directory *DirectoryService
	cal       calendar.Calendar
	logger    *slog.Logger
}

// NewRemoteService wires dependencies for remote-day operations.
func NewRemoteService(remote RemoteDayRepository, directory *DirectoryService, cal calendar.Calendar, logger *slog.Logger) *RemoteService {
	return &RemoteService{remote: remote, directory: directory, cal: cal, logger: defaultLogger(logger)}
}

// SetRemoteDays replaces the employee's remote days for the given week. At
// most two days are allowed and each must be a weekday of that week.
func (s *RemoteService) SetRemoteDays(ctx context.Context, employeeID string, weekMonday time.Time, dates []calendar.DayMonth) error {
	if s == nil || s.remote == nil {
		return fmt.Errorf("remote day repository not configured")
	}

	if len(dates) == 0 {
		vErr := &ValidationError{}
		vErr.add("dates", "select at least one day")
		return vErr
	}
	if len(dates) > maxRemoteDays {
		vErr := &ValidationError{}
		vErr.add("dates", fmt.Sprintf("at most %d remote days per week", maxRemoteDays))
		return vErr
	}

	week := make(map[calendar.DayMonth]struct{}, 5)
	for _, dm := range s.cal.WeekDates(weekMonday) {
		week[dm] = struct{}{}
	}
	for _, dm := range dates {
		if _, ok := week[dm]; !ok {
			vErr := &ValidationError{}
			vErr.add("dates", fmt.Sprintf("%s is not a weekday of that week", dm))
			return vErr
		}
	}

	days, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	weekKey := s.cal.MondayOf(weekMonday).Format("2006-01-02")
	selected := make([]string, 0, len(dates))
	for _, dm := range dates {
		selected = append(selected, string(dm))
	}
	if days[employeeID] == nil {
		days[employeeID] = make(map[string][]string)
	}
	days[employeeID][weekKey] = selected

	if err := s.remote.SaveRemoteDays(ctx, days); err != nil {
		return err
	}

	serviceLogger(ctx, s.logger, "remote", "set_remote_days").
		InfoContext(ctx, "remote days set", "employee", employeeID, "week", weekKey, "days", len(selected))
	return nil
}

// RemoteEmployeesFor lists the employees working remotely on the given day
// key, in directory order.
func (s *RemoteService) RemoteEmployeesFor(ctx context.Context, dm calendar.DayMonth) ([]Employee, error) {
	if s == nil || s.remote == nil {
		return nil, nil
	}

	days, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	employees, err := s.directory.Employees(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Employee, 0)
	for _, emp := range employees {
		weeks := days[emp.ID]
		for _, selected := range weeks {
			for _, raw := range selected {
				if calendar.DayMonth(raw) == dm {
					out = append(out, emp)
					break
				}
			}
			if len(out) > 0 && out[len(out)-1].ID == emp.ID {
				break
			}
		}
	}
	return out, nil
}

func (s *RemoteService) loadAll(ctx context.Context) (persistence.RemoteDays, error) {
	days, err := s.remote.LoadRemoteDays(ctx)
	if errors.Is(err, persistence.ErrNotFound) {
		return persistence.RemoteDays{}, nil
	}
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = persistence.RemoteDays{}
	}
	return days, nil
}
