package allocator

import (
	"testing"

	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/tasksupply"
)

func noAdjust(t tasksupply.Task, _ models.TimeBlock) int { return t.EstimatedMin }

func state(id string, energy models.EnergyLevel, capacity int) blockState {
	return blockState{
		block:     models.TimeBlock{ID: id, Energy: energy, Start: "09:00", End: "17:00"},
		remaining: capacity,
	}
}

func task(id string, minutes int, energy models.EnergyLevel) tasksupply.Task {
	return tasksupply.Task{ID: id, EstimatedMin: minutes, Energy: energy, Priority: models.PriorityMedium}
}

func TestPack_BestFitUnderCapacity(t *testing.T) {
	blocks := []blockState{state("b1", models.EnergyMedium, 90)}
	tasks := []tasksupply.Task{
		task("t50", 50, models.EnergyMedium),
		task("t30", 30, models.EnergyMedium),
		task("t40", 40, models.EnergyMedium),
	}
	for i := range tasks {
		tasks[i].DueDate = "2026-09-01"
	}

	res := pack(blocks, tasks, "2026-09-01", noAdjust)

	if len(res.order) != 2 {
		t.Fatalf("assigned %d tasks, want 2", len(res.order))
	}
	if res.assigned["t30"] != "b1" || res.assigned["t40"] != "b1" {
		t.Errorf("expected t30 and t40 assigned, got %v", res.assigned)
	}
	if len(res.deferred) != 1 || res.deferred[0].TaskID != "t50" {
		t.Fatalf("deferred = %+v, want t50", res.deferred)
	}
	if res.deferred[0].Reason != models.DeferNoCapacity {
		t.Errorf("reason = %s, want %s", res.deferred[0].Reason, models.DeferNoCapacity)
	}
}

func TestPack_CapacityNeverExceeded(t *testing.T) {
	blocks := []blockState{
		state("b1", models.EnergyMedium, 60),
		state("b2", models.EnergyMedium, 45),
	}
	tasks := []tasksupply.Task{
		task("t1", 40, models.EnergyMedium),
		task("t2", 30, models.EnergyMedium),
		task("t3", 25, models.EnergyMedium),
		task("t4", 20, models.EnergyMedium),
	}

	res := pack(blocks, tasks, "2026-09-01", noAdjust)

	used := map[string]int{}
	byID := map[string]int{"t1": 40, "t2": 30, "t3": 25, "t4": 20}
	for taskID, blockID := range res.assigned {
		used[blockID] += byID[taskID]
	}
	if used["b1"] > 60 {
		t.Errorf("b1 overpacked: %d > 60", used["b1"])
	}
	if used["b2"] > 45 {
		t.Errorf("b2 overpacked: %d > 45", used["b2"])
	}
}

func TestPack_EnergyCompatibility(t *testing.T) {
	blocks := []blockState{
		state("low", models.EnergyLow, 120),
		state("med", models.EnergyMedium, 120),
	}
	tasks := []tasksupply.Task{
		task("high-task", 60, models.EnergyHigh),
		task("peak-task", 60, models.EnergyPeak),
	}

	res := pack(blocks, tasks, "2026-09-01", noAdjust)

	if got := res.assigned["high-task"]; got != "med" {
		t.Errorf("high task landed in %q, want tolerated medium block", got)
	}
	if _, ok := res.assigned["peak-task"]; ok {
		t.Error("peak task should not fit any block two levels down")
	}
	if len(res.deferred) != 1 || res.deferred[0].Reason != models.DeferNoEnergyMatch {
		t.Errorf("deferred = %+v, want peak-task with NO_ENERGY_MATCH", res.deferred)
	}
}

func TestPack_ExactEnergyPreferred(t *testing.T) {
	blocks := []blockState{
		state("med", models.EnergyMedium, 120),
		state("high", models.EnergyHigh, 120),
	}
	res := pack(blocks, []tasksupply.Task{task("t1", 60, models.EnergyHigh)}, "2026-09-01", noAdjust)
	if got := res.assigned["t1"]; got != "high" {
		t.Errorf("task landed in %q, want exact-match high block despite medium listed first", got)
	}
}

func TestPack_OrderingByDueThenPriority(t *testing.T) {
	blocks := []blockState{state("b1", models.EnergyMedium, 60)}
	tasks := []tasksupply.Task{
		{ID: "later", EstimatedMin: 60, Energy: models.EnergyMedium, Priority: models.PriorityUrgent, DueDate: "2026-09-20"},
		{ID: "overdue", EstimatedMin: 60, Energy: models.EnergyMedium, Priority: models.PriorityLow, DueDate: "2026-08-25"},
	}

	res := pack(blocks, tasks, "2026-09-01", noAdjust)

	if res.assigned["overdue"] != "b1" {
		t.Errorf("overdue task should win the only slot, got %v", res.assigned)
	}
}

func TestPack_AdjustedDurationReservesMore(t *testing.T) {
	blocks := []blockState{state("b1", models.EnergyMedium, 60)}
	// History says this user runs 50% over estimate.
	overrun := func(t tasksupply.Task, _ models.TimeBlock) int {
		return t.EstimatedMin * 3 / 2
	}
	res := pack(blocks, []tasksupply.Task{task("t1", 50, models.EnergyMedium)}, "2026-09-01", overrun)
	if _, ok := res.assigned["t1"]; ok {
		t.Error("50 min estimate adjusted to 75 should not fit a 60 min block")
	}
}

func TestPack_OrderingUsesAdjustedDuration(t *testing.T) {
	blocks := []blockState{state("b1", models.EnergyMedium, 80)}
	// High-energy work runs at double the estimate for this user.
	overrunHigh := func(t tasksupply.Task, _ models.TimeBlock) int {
		if t.Energy == models.EnergyHigh {
			return t.EstimatedMin * 2
		}
		return t.EstimatedMin
	}
	tasks := []tasksupply.Task{
		task("t-high", 30, models.EnergyHigh),  // adjusted to 60
		task("t-med", 35, models.EnergyMedium), // stays 35
	}

	res := pack(blocks, tasks, "2026-09-01", overrunHigh)

	// Ties order by adjusted duration, so the 35 min task goes first and
	// the adjusted-to-60 task no longer fits the remaining 45.
	if res.assigned["t-med"] != "b1" {
		t.Errorf("medium task should win the slot on adjusted ordering, got %v", res.assigned)
	}
	if _, ok := res.assigned["t-high"]; ok {
		t.Error("adjusted 60 min task should not fit after the 35 min task")
	}
}

func TestDueRank(t *testing.T) {
	date := "2026-09-01"
	if dueRank("2026-08-30", date) != 0 {
		t.Error("overdue should rank first")
	}
	if dueRank("2026-09-01", date) != 1 {
		t.Error("due today should rank second")
	}
	if dueRank("2026-09-03", date) >= dueRank("2026-09-10", date) {
		t.Error("closer due dates should rank earlier")
	}
	if dueRank("", date) != 1000 {
		t.Error("no due date should rank last")
	}
}
