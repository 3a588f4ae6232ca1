package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/catalog"
	"github.com/example/routine-bot/internal/persistence"
)

// DailyStateRepository captures the persistence interactions needed by the
// completion ledger.
type DailyStateRepository interface {
	LoadDailyState(ctx context.Context, key string) (persistence.DailyState, error)
	SaveDailyState(ctx context.Context, key string, state persistence.DailyState) error
}

// CatalogSource provides the current task catalog snapshot.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*catalog.Catalog, error)
}

// LedgerService records task completions for one operating mode. The
// production and debug ledgers are independent instances over separate state
// documents; they never coordinate.
type LedgerService struct {
	mode    Mode
	states  DailyStateRepository
	catalog CatalogSource
	cal     calendar.Calendar
	logger  *slog.Logger

	// mu serializes every read-modify-write on the mode's daily state so
	// concurrent completions of the same task cannot both succeed.
	mu sync.Mutex
}

// NewLedgerService wires a per-mode completion ledger.
func NewLedgerService(mode Mode, states DailyStateRepository, catalogSource CatalogSource, cal calendar.Calendar, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		mode:    mode,
		states:  states,
		catalog: catalogSource,
		cal:     cal,
		logger:  defaultLogger(logger),
	}
}

// Mode returns the instance's operating mode.
func (s *LedgerService) Mode() Mode {
	if s == nil {
		return ModeProduction
	}
	return s.mode
}

// RecordCompletion marks the named task completed by the given user. The
// first writer wins: duplicates are reported as ErrAlreadyCompleted without
// overwriting the original completer or time. Unknown names, including duty
// tasks which never enter the ledger, are rejected before any state write.
func (s *LedgerService) RecordCompletion(ctx context.Context, taskName, chatUserID string, at time.Time) (Completion, error) {
	if s == nil || s.states == nil {
		return Completion{}, fmt.Errorf("daily state repository not configured")
	}

	cat, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return Completion{}, err
	}
	task, ok := cat.ByName(taskName)
	if !ok || task.Kind != catalog.KindRegular {
		return Completion{}, fmt.Errorf("%w: %q", ErrUnknownTask, taskName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadStateLocked(ctx)
	if err != nil {
		return Completion{}, err
	}

	local := at.In(s.cal.Location())
	if state.Date != s.cal.DayOf(at).Format("2006-01-02") {
		return Completion{}, ErrStaleState
	}

	key := strings.ToUpper(task.Name)
	if state.Completed == nil {
		state.Completed = make(map[string]persistence.CompletionRecord)
	}
	if _, done := state.Completed[key]; done {
		return Completion{}, fmt.Errorf("%w: %q", ErrAlreadyCompleted, task.Name)
	}

	state.Completed[key] = persistence.CompletionRecord{
		User: chatUserID,
		Time: local.Format("15:04"),
	}
	if err := s.states.SaveDailyState(ctx, s.mode.StateKey(), state); err != nil {
		return Completion{}, err
	}

	serviceLogger(ctx, s.logger, "ledger", "record_completion", "mode", string(s.mode)).
		InfoContext(ctx, "task completed", "task", task.Name, "user", chatUserID)

	return Completion{TaskName: task.Name, ChatUserID: chatUserID, At: local}, nil
}

// EnsureThread initialises the day's state with the chat thread handle. The
// handle is set exactly once per date: repeating the same handle is a no-op,
// a different handle for an initialised date is refused so a duplicate daily
// post cannot silently redirect completion tracking. A new date resets the
// completed map.
func (s *LedgerService) EnsureThread(ctx context.Context, date time.Time, threadID string) error {
	if s == nil || s.states == nil {
		return fmt.Errorf("daily state repository not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadStateLocked(ctx)
	if err != nil {
		return err
	}

	dateKey := s.cal.DayOf(date).Format("2006-01-02")
	if state.Date == dateKey {
		if state.ThreadTS == threadID {
			return nil
		}
		if state.ThreadTS != "" {
			return fmt.Errorf("%w: date %s", ErrThreadAlreadySet, dateKey)
		}
	}

	state = persistence.DailyState{
		Date:      dateKey,
		ThreadTS:  threadID,
		Completed: make(map[string]persistence.CompletionRecord),
	}
	return s.states.SaveDailyState(ctx, s.mode.StateKey(), state)
}

// ThreadID returns the chat thread handle for the given date, empty when the
// day has not been initialised.
func (s *LedgerService) ThreadID(ctx context.Context, date time.Time) (string, error) {
	if s == nil || s.states == nil {
		return "", fmt.Errorf("daily state repository not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadStateLocked(ctx)
	if err != nil {
		return "", err
	}
	if state.Date != s.cal.DayOf(date).Format("2006-01-02") {
		return "", nil
	}
	return state.ThreadTS, nil
}

// CompletedTasks returns the completion records for the given date, keyed by
// uppercase task name. A state belonging to another date yields an empty map.
func (s *LedgerService) CompletedTasks(ctx context.Context, date time.Time) (map[string]persistence.CompletionRecord, error) {
	if s == nil || s.states == nil {
		return nil, fmt.Errorf("daily state repository not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadStateLocked(ctx)
	if err != nil {
		return nil, err
	}
	if state.Date != s.cal.DayOf(date).Format("2006-01-02") || len(state.Completed) == 0 {
		return map[string]persistence.CompletionRecord{}, nil
	}

	out := make(map[string]persistence.CompletionRecord, len(state.Completed))
	for name, record := range state.Completed {
		out[name] = record
	}
	return out, nil
}

// IsLate compares the completion instant against the task deadline in the
// fixed timezone. Tasks without a deadline are never late.
func (s *LedgerService) IsLate(task catalog.Task, at time.Time) bool {
	delay, late := s.Delay(task, at)
	return late && delay > 0
}

// Delay reports how far past the deadline the instant is. The second return
// is false for tasks without a deadline.
func (s *LedgerService) Delay(task catalog.Task, at time.Time) (time.Duration, bool) {
	if task.Deadline == nil {
		return 0, false
	}
	deadline := s.cal.At(at, *task.Deadline)
	if !at.After(deadline) {
		return 0, false
	}
	return at.Sub(deadline), true
}

func (s *LedgerService) loadStateLocked(ctx context.Context) (persistence.DailyState, error) {
	state, err := s.states.LoadDailyState(ctx, s.mode.StateKey())
	if errors.Is(err, persistence.ErrNotFound) {
		return persistence.DailyState{}, nil
	}
	if err != nil {
		return persistence.DailyState{}, err
	}
	return state, nil
}
