package testfixtures

import (
	"context"
	"sync"

	"github.com/example/routine-bot/internal/persistence"
)

// MemoryStore is an in-memory document store satisfying every repository
// interface the services declare. Documents that were never saved report
// persistence.ErrNotFound, matching the SQL-backed store.
type MemoryStore struct {
	mu sync.Mutex

	tasks     []persistence.TaskRecord
	hasTasks  bool
	employees []persistence.EmployeeRecord
	hasEmps   bool

	states          map[string]persistence.DailyState
	duties          persistence.DutyAssignments
	taskAssignments persistence.TaskAssignments
	specialDates    persistence.SpecialDates
	remoteDays      persistence.RemoteDays

	// Err, when set, is returned by every operation. It simulates a storage
	// outage.
	Err error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]persistence.DailyState)}
}

func (m *MemoryStore) LoadTaskBase(ctx context.Context) ([]persistence.TaskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if !m.hasTasks {
		return nil, persistence.ErrNotFound
	}
	return append([]persistence.TaskRecord(nil), m.tasks...), nil
}

func (m *MemoryStore) SaveTaskBase(ctx context.Context, records []persistence.TaskRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.tasks = append([]persistence.TaskRecord(nil), records...)
	m.hasTasks = true
	return nil
}

func (m *MemoryStore) LoadEmployees(ctx context.Context) ([]persistence.EmployeeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if !m.hasEmps {
		return nil, persistence.ErrNotFound
	}
	return append([]persistence.EmployeeRecord(nil), m.employees...), nil
}

func (m *MemoryStore) SaveEmployees(ctx context.Context, records []persistence.EmployeeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.employees = append([]persistence.EmployeeRecord(nil), records...)
	m.hasEmps = true
	return nil
}

func (m *MemoryStore) LoadDailyState(ctx context.Context, key string) (persistence.DailyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return persistence.DailyState{}, m.Err
	}
	state, ok := m.states[key]
	if !ok {
		return persistence.DailyState{}, persistence.ErrNotFound
	}
	return cloneDailyState(state), nil
}

func (m *MemoryStore) SaveDailyState(ctx context.Context, key string, state persistence.DailyState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.states[key] = cloneDailyState(state)
	return nil
}

func (m *MemoryStore) LoadDutyAssignments(ctx context.Context) (persistence.DutyAssignments, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.duties == nil {
		return nil, persistence.ErrNotFound
	}
	out := make(persistence.DutyAssignments, len(m.duties))
	for week, byDuty := range m.duties {
		clone := make(map[string]string, len(byDuty))
		for duty, user := range byDuty {
			clone[duty] = user
		}
		out[week] = clone
	}
	return out, nil
}

func (m *MemoryStore) SaveDutyAssignments(ctx context.Context, assignments persistence.DutyAssignments) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	out := make(persistence.DutyAssignments, len(assignments))
	for week, byDuty := range assignments {
		clone := make(map[string]string, len(byDuty))
		for duty, user := range byDuty {
			clone[duty] = user
		}
		out[week] = clone
	}
	m.duties = out
	return nil
}

func (m *MemoryStore) LoadTaskAssignments(ctx context.Context) (persistence.TaskAssignments, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.taskAssignments == nil {
		return nil, persistence.ErrNotFound
	}
	out := make(persistence.TaskAssignments, len(m.taskAssignments))
	for name, user := range m.taskAssignments {
		out[name] = user
	}
	return out, nil
}

func (m *MemoryStore) SaveTaskAssignments(ctx context.Context, assignments persistence.TaskAssignments) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	out := make(persistence.TaskAssignments, len(assignments))
	for name, user := range assignments {
		out[name] = user
	}
	m.taskAssignments = out
	return nil
}

func (m *MemoryStore) LoadSpecialDates(ctx context.Context) (persistence.SpecialDates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.specialDates == nil {
		return nil, persistence.ErrNotFound
	}
	out := make(persistence.SpecialDates, len(m.specialDates))
	for day, record := range m.specialDates {
		out[day] = record
	}
	return out, nil
}

func (m *MemoryStore) SaveSpecialDates(ctx context.Context, dates persistence.SpecialDates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	out := make(persistence.SpecialDates, len(dates))
	for day, record := range dates {
		out[day] = record
	}
	m.specialDates = out
	return nil
}

func (m *MemoryStore) LoadRemoteDays(ctx context.Context) (persistence.RemoteDays, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.remoteDays == nil {
		return nil, persistence.ErrNotFound
	}
	out := make(persistence.RemoteDays, len(m.remoteDays))
	for emp, weeks := range m.remoteDays {
		clone := make(map[string][]string, len(weeks))
		for week, days := range weeks {
			clone[week] = append([]string(nil), days...)
		}
		out[emp] = clone
	}
	return out, nil
}

func (m *MemoryStore) SaveRemoteDays(ctx context.Context, days persistence.RemoteDays) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	out := make(persistence.RemoteDays, len(days))
	for emp, weeks := range days {
		clone := make(map[string][]string, len(weeks))
		for week, dates := range weeks {
			clone[week] = append([]string(nil), dates...)
		}
		out[emp] = clone
	}
	m.remoteDays = out
	return nil
}

func cloneDailyState(state persistence.DailyState) persistence.DailyState {
	clone := persistence.DailyState{
		Date:     state.Date,
		ThreadTS: state.ThreadTS,
	}
	if state.Completed != nil {
		clone.Completed = make(map[string]persistence.CompletionRecord, len(state.Completed))
		for name, record := range state.Completed {
			clone.Completed[name] = record
		}
	}
	return clone
}
