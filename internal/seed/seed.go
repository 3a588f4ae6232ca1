// Package seed loads the task catalog, employee directory and special dates
// from a YAML file and writes them as store documents. It exists so a fresh
// deployment can be populated without hand-editing the database.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/example/routine-bot/internal/persistence"
)

// Store is the subset of the persistence layer the seeder writes to.
type Store interface {
	SaveTaskBase(ctx context.Context, records []persistence.TaskRecord) error
	SaveEmployees(ctx context.Context, records []persistence.EmployeeRecord) error
	SaveSpecialDates(ctx context.Context, dates persistence.SpecialDates) error
}

// File mirrors the YAML seed document.
type File struct {
	Tasks        []TaskSeed        `yaml:"tasks"`
	Employees    []EmployeeSeed    `yaml:"employees"`
	SpecialDates []SpecialDateSeed `yaml:"special_dates"`
}

type TaskSeed struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Days     []string `yaml:"days"`
	Period   string   `yaml:"period"`
	Deadline string   `yaml:"deadline"`
	AsanaURL string   `yaml:"asana_url"`
	Comments string   `yaml:"comments"`
}

type EmployeeSeed struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Username     string   `yaml:"username"`
	SlackID      string   `yaml:"slack_id"`
	MorningDates []string `yaml:"morning_dates"`
	EveningDates []string `yaml:"evening_dates"`
}

type SpecialDateSeed struct {
	Date        string `yaml:"date"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Parse decodes a YAML seed document.
func Parse(data []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("seed: parse: %w", err)
	}
	return file, nil
}

// ParseFile reads and decodes the seed file at path.
func ParseFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(data)
}

// Apply converts the seed file into store documents and saves them. Entries
// without an explicit id get a fresh one. Days lists collapse to the "all"
// shorthand when empty.
func Apply(ctx context.Context, store Store, file File) error {
	tasks := make([]persistence.TaskRecord, 0, len(file.Tasks))
	for _, t := range file.Tasks {
		id := t.ID
		if id == "" {
			id = uuid.NewString()
		}
		days := "all"
		if len(t.Days) > 0 {
			days = strings.ToLower(strings.Join(t.Days, ","))
		}
		tasks = append(tasks, persistence.TaskRecord{
			ID:       id,
			Name:     t.Name,
			Type:     strings.ToLower(t.Type),
			Days:     days,
			Period:   strings.ToLower(t.Period),
			Deadline: t.Deadline,
			AsanaURL: t.AsanaURL,
			Comments: t.Comments,
		})
	}
	if err := store.SaveTaskBase(ctx, tasks); err != nil {
		return fmt.Errorf("seed: save task base: %w", err)
	}

	employees := make([]persistence.EmployeeRecord, 0, len(file.Employees))
	for _, e := range file.Employees {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		employees = append(employees, persistence.EmployeeRecord{
			ID:           id,
			Name:         e.Name,
			Username:     strings.TrimPrefix(e.Username, "@"),
			SlackID:      e.SlackID,
			MorningDates: e.MorningDates,
			EveningDates: e.EveningDates,
		})
	}
	if err := store.SaveEmployees(ctx, employees); err != nil {
		return fmt.Errorf("seed: save employees: %w", err)
	}

	dates := make(persistence.SpecialDates, len(file.SpecialDates))
	for _, d := range file.SpecialDates {
		dates[d.Date] = persistence.SpecialDateRecord{
			Type:        strings.ToLower(d.Type),
			Description: d.Description,
		}
	}
	if err := store.SaveSpecialDates(ctx, dates); err != nil {
		return fmt.Errorf("seed: save special dates: %w", err)
	}

	return nil
}
