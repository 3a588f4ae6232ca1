// Package sqlite implements the document store on an embedded SQLite
// database. Each logical document is serialized to JSON and stored as a
// whole blob under its stable key; the engine performs its own ordering of
// reads and writes and never relies on cross-document atomicity.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/routine-bot/internal/persistence"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// Store persists whole-document blobs keyed by stable names.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open establishes the database connection and verifies it is reachable.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	// A single writer keeps document read-modify-write cycles ordered.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the documents table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

func (s *Store) getDocument(ctx context.Context, key string, out any) error {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlite: load %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("sqlite: decode %q: %w", key, err)
	}
	return nil
}

func (s *Store) putDocument(ctx context.Context, key string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("sqlite: encode %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, string(body), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite: save %q: %w", key, err)
	}
	return nil
}

// LoadTaskBase reads the ordered task catalog document.
func (s *Store) LoadTaskBase(ctx context.Context) ([]persistence.TaskRecord, error) {
	var records []persistence.TaskRecord
	if err := s.getDocument(ctx, persistence.KeyTaskBase, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveTaskBase replaces the task catalog document.
func (s *Store) SaveTaskBase(ctx context.Context, records []persistence.TaskRecord) error {
	return s.putDocument(ctx, persistence.KeyTaskBase, records)
}

// LoadEmployees reads the employee directory document.
func (s *Store) LoadEmployees(ctx context.Context) ([]persistence.EmployeeRecord, error) {
	var records []persistence.EmployeeRecord
	if err := s.getDocument(ctx, persistence.KeyEmployees, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveEmployees replaces the employee directory document.
func (s *Store) SaveEmployees(ctx context.Context, records []persistence.EmployeeRecord) error {
	return s.putDocument(ctx, persistence.KeyEmployees, records)
}

// LoadDailyState reads one mode's daily tracking document.
func (s *Store) LoadDailyState(ctx context.Context, key string) (persistence.DailyState, error) {
	var state persistence.DailyState
	if err := s.getDocument(ctx, key, &state); err != nil {
		return persistence.DailyState{}, err
	}
	return state, nil
}

// SaveDailyState replaces one mode's daily tracking document.
func (s *Store) SaveDailyState(ctx context.Context, key string, state persistence.DailyState) error {
	return s.putDocument(ctx, key, state)
}

// LoadDutyAssignments reads the weekly duty-assignment table.
func (s *Store) LoadDutyAssignments(ctx context.Context) (persistence.DutyAssignments, error) {
	assignments := persistence.DutyAssignments{}
	if err := s.getDocument(ctx, persistence.KeyDutyAssignments, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// SaveDutyAssignments replaces the weekly duty-assignment table.
func (s *Store) SaveDutyAssignments(ctx context.Context, assignments persistence.DutyAssignments) error {
	return s.putDocument(ctx, persistence.KeyDutyAssignments, assignments)
}

// LoadTaskAssignments reads the per-task assignee table.
func (s *Store) LoadTaskAssignments(ctx context.Context) (persistence.TaskAssignments, error) {
	assignments := persistence.TaskAssignments{}
	if err := s.getDocument(ctx, persistence.KeyTaskAssignments, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// SaveTaskAssignments replaces the per-task assignee table.
func (s *Store) SaveTaskAssignments(ctx context.Context, assignments persistence.TaskAssignments) error {
	return s.putDocument(ctx, persistence.KeyTaskAssignments, assignments)
}

// LoadSpecialDates reads the special-date table.
func (s *Store) LoadSpecialDates(ctx context.Context) (persistence.SpecialDates, error) {
	dates := persistence.SpecialDates{}
	if err := s.getDocument(ctx, persistence.KeySpecialDates, &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

// SaveSpecialDates replaces the special-date table.
func (s *Store) SaveSpecialDates(ctx context.Context, dates persistence.SpecialDates) error {
	return s.putDocument(ctx, persistence.KeySpecialDates, dates)
}

// LoadRemoteDays reads the remote-work table.
func (s *Store) LoadRemoteDays(ctx context.Context) (persistence.RemoteDays, error) {
	days := persistence.RemoteDays{}
	if err := s.getDocument(ctx, persistence.KeyRemoteDays, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// SaveRemoteDays replaces the remote-work table.
func (s *Store) SaveRemoteDays(ctx context.Context, days persistence.RemoteDays) error {
	return s.putDocument(ctx, persistence.KeyRemoteDays, days)
}
