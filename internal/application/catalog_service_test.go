package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/routine-bot/internal/catalog"
	"github.com/example/routine-bot/internal/persistence"
	"github.com/example/routine-bot/internal/testfixtures"
)

func TestCatalogService_Snapshot(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	if err := store.SaveTaskBase(context.Background(), []persistence.TaskRecord{
		testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report"), testfixtures.WithTaskPeriod("morning"), testfixtures.WithTaskDeadline("11:00")),
		testfixtures.NewTaskRecord(testfixtures.WithTaskName("Backup"), testfixtures.WithTaskPeriod("evening"), testfixtures.WithTaskDays("monday, friday")),
		testfixtures.NewTaskRecord(testfixtures.WithTaskName("Channel review"), testfixtures.WithTaskType("duty")),
	}); err != nil {
		t.Fatal(err)
	}

	svc := NewCatalogService(store, nil)
	cat, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if cat.Len() != 3 {
		t.Fatalf("catalog size = %d, want 3", cat.Len())
	}

	report, ok := cat.ByName("report")
	if !ok {
		t.Fatal("Report not found")
	}
	if report.Period != catalog.PeriodMorning {
		t.Errorf("Report period = %q", report.Period)
	}
	if report.Deadline == nil || report.Deadline.String() != "11:00" {
		t.Errorf("Report deadline = %v", report.Deadline)
	}

	backup, _ := cat.ByName("Backup")
	if backup.Days.Contains("tuesday") {
		t.Error("Backup limited to monday,friday should not apply on tuesday")
	}
	if !backup.Days.Contains("Friday") {
		t.Error("Backup should apply on friday")
	}

	duty, _ := cat.ByName("Channel review")
	if duty.Kind != catalog.KindDuty {
		t.Errorf("Channel review kind = %q", duty.Kind)
	}
}

func TestCatalogService_Snapshot_MissingDocument(t *testing.T) {
	t.Parallel()

	svc := NewCatalogService(testfixtures.NewMemoryStore(), nil)
	cat, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot on empty store: %v", err)
	}
	if cat.Len() != 0 {
		t.Fatalf("catalog size = %d, want 0", cat.Len())
	}
}

func TestCatalogService_Snapshot_RejectsWholeDocument(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		records []persistence.TaskRecord
	}{
		{"duplicate names", []persistence.TaskRecord{
			testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report")),
			testfixtures.NewTaskRecord(testfixtures.WithTaskName("report")),
		}},
		{"bad deadline", []persistence.TaskRecord{
			testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report"), testfixtures.WithTaskDeadline("25:00")),
		}},
		{"duty with deadline", []persistence.TaskRecord{
			testfixtures.NewTaskRecord(testfixtures.WithTaskName("Channel review"), testfixtures.WithTaskType("duty"), testfixtures.WithTaskDeadline("11:00")),
		}},
		{"unknown weekday", []persistence.TaskRecord{
			testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report"), testfixtures.WithTaskDays("someday")),
		}},
		{"unknown type", []persistence.TaskRecord{
			testfixtures.NewTaskRecord(testfixtures.WithTaskName("Report"), testfixtures.WithTaskType("weekly")),
		}},
		{"missing name", []persistence.TaskRecord{
			testfixtures.NewTaskRecord(testfixtures.WithTaskName("   ")),
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := testfixtures.NewMemoryStore()
			if err := store.SaveTaskBase(context.Background(), tc.records); err != nil {
				t.Fatal(err)
			}

			_, err := NewCatalogService(store, nil).Snapshot(context.Background())
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Snapshot error = %v, want *ValidationError", err)
			}
			if !vErr.HasErrors() {
				t.Fatal("validation error carries no field errors")
			}
		})
	}
}

func TestCatalogService_Snapshot_StoreOutage(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	store.Err = errors.New("disk gone")

	if _, err := NewCatalogService(store, nil).Snapshot(context.Background()); err == nil {
		t.Fatal("store outage must surface, not yield an empty catalog")
	}
}
