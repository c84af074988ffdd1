package schedule

import (
	"context"
	"testing"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/registry"
	"github.com/workdeck/planner/internal/storage/storagetest"
)

const monday = "2026-08-31"

func newBuilder(t *testing.T) (*Builder, *storagetest.MemStore) {
	t.Helper()
	store := storagetest.New()
	return NewBuilder(store, registry.New(store, nil), nil), store
}

func addBlock(t *testing.T, store *storagetest.MemStore, id, start, end string, isBreak bool) {
	t.Helper()
	err := store.AddTimeBlock(models.TimeBlock{
		ID: id, UserID: "u1", Name: id, Start: start, End: end,
		Workdays: true, Energy: models.EnergyMedium, IsBreak: isBreak, IsActive: true,
	})
	if err != nil {
		t.Fatalf("AddTimeBlock: %v", err)
	}
}

func addTask(t *testing.T, store *storagetest.MemStore, id, blockID string, minutes int, status models.TaskStatus) {
	t.Helper()
	err := store.SaveScheduledTask(models.ScheduledTask{
		ID: id, UserID: "u1", TaskID: "task-" + id, BlockID: blockID, Date: monday,
		EstimatedMin: minutes, Status: status, Energy: models.EnergyMedium,
		Priority: models.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("SaveScheduledTask: %v", err)
	}
}

func TestBuild_UtilizationAndTotals(t *testing.T) {
	b, store := newBuilder(t)
	addBlock(t, store, "b1", "09:00", "10:00", false) // 60 min
	addBlock(t, store, "b2", "10:00", "12:00", false) // 120 min
	addTask(t, store, "s1", "b1", 30, models.StatusPlanned)
	addTask(t, store, "s2", "b2", 60, models.StatusPlanned)

	day, err := b.Build(context.Background(), "u1", monday)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if day.TotalCapacityMin != 180 {
		t.Errorf("TotalCapacityMin = %d, want 180", day.TotalCapacityMin)
	}
	if day.TotalPlannedMin != 90 {
		t.Errorf("TotalPlannedMin = %d, want 90", day.TotalPlannedMin)
	}
	if day.UtilizationPct != 50 {
		t.Errorf("UtilizationPct = %d, want 50", day.UtilizationPct)
	}
	if day.Blocks[0].UtilizationPct != 50 || day.Blocks[1].UtilizationPct != 50 {
		t.Errorf("per-block utilization = %d/%d, want 50/50",
			day.Blocks[0].UtilizationPct, day.Blocks[1].UtilizationPct)
	}
}

func TestBuild_OvercommittedFlaggedNotRejected(t *testing.T) {
	b, store := newBuilder(t)
	addBlock(t, store, "b1", "09:00", "10:00", false)
	addTask(t, store, "s1", "b1", 45, models.StatusPlanned)
	addTask(t, store, "s2", "b1", 45, models.StatusPlanned)

	day, err := b.Build(context.Background(), "u1", monday)
	if err != nil {
		t.Fatalf("overcommit must not error: %v", err)
	}
	if !day.Blocks[0].Overcommitted {
		t.Error("block with 90 planned minutes in 60 capacity should be overcommitted")
	}
}

func TestBuild_FinishedTasksFreeCapacity(t *testing.T) {
	b, store := newBuilder(t)
	addBlock(t, store, "b1", "09:00", "10:00", false)
	addTask(t, store, "s1", "b1", 40, models.StatusDone)
	addTask(t, store, "s2", "b1", 40, models.StatusSkipped)
	addTask(t, store, "s3", "b1", 20, models.StatusPlanned)

	day, err := b.Build(context.Background(), "u1", monday)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if day.Blocks[0].PlannedMin != 20 {
		t.Errorf("PlannedMin = %d, want 20 (done and skipped excluded)", day.Blocks[0].PlannedMin)
	}
	if len(day.Blocks[0].Tasks) != 3 {
		t.Errorf("all assignments should still be listed, got %d", len(day.Blocks[0].Tasks))
	}
}

func TestBuild_ReflectsManualReassignment(t *testing.T) {
	b, store := newBuilder(t)
	addBlock(t, store, "b1", "09:00", "10:00", false)
	addBlock(t, store, "b2", "10:00", "11:00", false)
	addTask(t, store, "s1", "b1", 30, models.StatusPlanned)

	if err := store.ReassignScheduledTask("s1", "b2"); err != nil {
		t.Fatalf("ReassignScheduledTask: %v", err)
	}
	day, err := b.Build(context.Background(), "u1", monday)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(day.Blocks[0].Tasks) != 0 || len(day.Blocks[1].Tasks) != 1 {
		t.Errorf("reassignment not reflected: b1=%d b2=%d tasks",
			len(day.Blocks[0].Tasks), len(day.Blocks[1].Tasks))
	}
}

func TestBuild_BreakBlocksExcludedFromTotals(t *testing.T) {
	b, store := newBuilder(t)
	addBlock(t, store, "b1", "09:00", "10:00", false)
	addBlock(t, store, "lunch", "12:00", "13:00", true)

	day, err := b.Build(context.Background(), "u1", monday)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if day.TotalCapacityMin != 60 {
		t.Errorf("TotalCapacityMin = %d, want 60 (break excluded)", day.TotalCapacityMin)
	}
	if len(day.Blocks) != 2 {
		t.Errorf("break block should still appear in the view, got %d blocks", len(day.Blocks))
	}
}

func TestBuildWeek(t *testing.T) {
	b, store := newBuilder(t)
	addBlock(t, store, "b1", "09:00", "10:00", false)

	week, err := b.BuildWeek(context.Background(), "u1", monday)
	if err != nil {
		t.Fatalf("BuildWeek: %v", err)
	}
	if len(week.Days) != 7 {
		t.Fatalf("week has %d days, want 7", len(week.Days))
	}
	// Mon-Fri have the workdays block, Sat-Sun do not.
	for i, day := range week.Days {
		want := 1
		if i >= 5 {
			want = 0
		}
		if len(day.Blocks) != want {
			t.Errorf("day %s has %d blocks, want %d", day.Date, len(day.Blocks), want)
		}
	}
}

func TestBuildMonth(t *testing.T) {
	b, store := newBuilder(t)
	addBlock(t, store, "b1", "09:00", "10:00", false)

	// August 2026 runs Saturday the 1st through Monday the 31st.
	month, err := b.BuildMonth(context.Background(), "u1", monday)
	if err != nil {
		t.Fatalf("BuildMonth: %v", err)
	}
	if month.StartDate != "2026-08-01" {
		t.Errorf("StartDate = %s, want 2026-08-01", month.StartDate)
	}
	if len(month.Days) != 31 {
		t.Fatalf("month has %d days, want 31", len(month.Days))
	}
	workdays := 0
	for _, day := range month.Days {
		if len(day.Blocks) == 1 {
			workdays++
		}
	}
	if workdays != 21 {
		t.Errorf("workdays block appears on %d days, want 21", workdays)
	}
}

func TestSummarize(t *testing.T) {
	b, store := newBuilder(t)
	addBlock(t, store, "b1", "09:00", "10:00", false)
	addTask(t, store, "s1", "b1", 30, models.StatusDone)
	addTask(t, store, "s2", "b1", 30, models.StatusPlanned)

	sum, err := b.Summarize(context.Background(), "u1", monday)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.TaskCount != 2 || sum.DoneCount != 1 {
		t.Errorf("tasks/done = %d/%d, want 2/1", sum.TaskCount, sum.DoneCount)
	}
}

func TestBuild_InvalidDate(t *testing.T) {
	b, _ := newBuilder(t)
	if _, err := b.Build(context.Background(), "u1", "yesterday"); !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
