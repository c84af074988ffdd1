package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/workdeck/planner/internal/learner"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/registry"
	"github.com/workdeck/planner/internal/schedule"
	"github.com/workdeck/planner/internal/storage/storagetest"
)

const monday = "2026-08-31"

func at(clock string) time.Time {
	ts, err := time.Parse("2006-01-02 15:04", monday+" "+clock)
	if err != nil {
		panic(err)
	}
	return ts
}

func newEngine(t *testing.T) (*Engine, *storagetest.MemStore) {
	t.Helper()
	store := storagetest.New()
	l := learner.New(store, 0.1)
	t.Cleanup(l.Close)
	builder := schedule.NewBuilder(store, registry.New(store, nil), nil)
	return New(builder, l), store
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

func addPlanned(t *testing.T, store *storagetest.MemStore, id, blockID string, priority models.Priority, due string) {
	t.Helper()
	err := store.SaveScheduledTask(models.ScheduledTask{
		ID: id, UserID: "u1", TaskID: "task-" + id, BlockID: blockID, Date: monday,
		EstimatedMin: 30, Status: models.StatusPlanned, Energy: models.EnergyMedium,
		Priority: priority, DueDate: due,
	})
	if err != nil {
		t.Fatalf("SaveScheduledTask: %v", err)
	}
}

func TestNext_PicksHighestScore(t *testing.T) {
	e, store := newEngine(t)
	addBlock(t, store, "b1", "09:00", "11:00", false)
	addPlanned(t, store, "s-low", "b1", models.PriorityLow, "")
	addPlanned(t, store, "s-urgent", "b1", models.PriorityUrgent, "")

	got, err := e.Next(context.Background(), "u1", at("09:30"))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got == nil || got.TaskID != "task-s-urgent" {
		t.Errorf("suggestion = %+v, want urgent task", got)
	}
	if got != nil && got.BlockID != "b1" {
		t.Errorf("BlockID = %s, want b1", got.BlockID)
	}
}

func TestNext_DueDateBreaksPriorityTie(t *testing.T) {
	e, store := newEngine(t)
	addBlock(t, store, "b1", "09:00", "11:00", false)
	addPlanned(t, store, "s-later", "b1", models.PriorityMedium, "2026-09-20")
	addPlanned(t, store, "s-today", "b1", models.PriorityMedium, monday)

	got, err := e.Next(context.Background(), "u1", at("09:30"))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got == nil || got.TaskID != "task-s-today" {
		t.Errorf("suggestion = %+v, want the task due today", got)
	}
}

func TestNext_InsideBreakReturnsNone(t *testing.T) {
	e, store := newEngine(t)
	addBlock(t, store, "lunch", "12:00", "13:00", true)
	addBlock(t, store, "b1", "09:00", "11:00", false)
	addPlanned(t, store, "s1", "b1", models.PriorityHigh, "")

	got, err := e.Next(context.Background(), "u1", at("12:30"))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != nil {
		t.Errorf("suggestion during a break = %+v, want none", got)
	}
}

func TestNext_NoPlannedTasksReturnsNone(t *testing.T) {
	e, store := newEngine(t)
	addBlock(t, store, "b1", "09:00", "11:00", false)
	addPlanned(t, store, "s1", "b1", models.PriorityHigh, "")
	if err := store.UpdateScheduledTaskStatus("s1", models.StatusDone, "2026-08-31T10:00:00Z", nil); err != nil {
		t.Fatalf("UpdateScheduledTaskStatus: %v", err)
	}

	got, err := e.Next(context.Background(), "u1", at("09:30"))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != nil {
		t.Errorf("suggestion with no planned tasks = %+v, want none", got)
	}
}

func TestNext_BetweenBlocksLooksAhead(t *testing.T) {
	e, store := newEngine(t)
	addBlock(t, store, "b1", "14:00", "16:00", false)
	addPlanned(t, store, "s1", "b1", models.PriorityMedium, "")

	got, err := e.Next(context.Background(), "u1", at("12:00"))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got == nil || got.BlockID != "b1" {
		t.Errorf("suggestion = %+v, want upcoming block b1", got)
	}
}

func TestNext_EmptyDayReturnsNone(t *testing.T) {
	e, _ := newEngine(t)
	got, err := e.Next(context.Background(), "u1", at("09:30"))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != nil {
		t.Errorf("suggestion on empty day = %+v, want none", got)
	}
}
