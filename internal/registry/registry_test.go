package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/storage/storagetest"
)

func newRegistry() *Registry {
	return New(storagetest.New(), nil)
}

func weekdayPtr(d time.Weekday) *time.Weekday { return &d }

func block(name, start, end string) models.TimeBlock {
	return models.TimeBlock{
		UserID:   "u1",
		Name:     name,
		Start:    start,
		End:      end,
		Workdays: true,
		Energy:   models.EnergyMedium,
	}
}

func TestRegistry_CreateAndList(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()

	created, err := r.Create(ctx, block("Morning", "09:00", "11:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("created block should get an id")
	}
	if !created.IsActive {
		t.Error("created block should be active")
	}

	if _, err := r.Create(ctx, block("Afternoon", "13:00", "15:00")); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	blocks, err := r.List("u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("List returned %d blocks, want 2", len(blocks))
	}
	if blocks[0].Name != "Morning" || blocks[1].Name != "Afternoon" {
		t.Errorf("blocks not ordered by start time: %s, %s", blocks[0].Name, blocks[1].Name)
	}
}

func TestRegistry_CreateConflict(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()

	if _, err := r.Create(ctx, block("Morning", "09:00", "11:00")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := r.Create(ctx, block("Clash", "10:00", "12:00"))
	if !apperr.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	var ce *apperr.ConflictError
	if !errors.As(err, &ce) {
		t.Fatal("error should be a *ConflictError")
	}
	if ce.OtherID == "" || len(ce.Days) == 0 {
		t.Errorf("conflict should name the other block and days: %+v", ce)
	}
}

func TestRegistry_CreateConflict_DisjointWeekdays(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()

	mon := block("Monday Focus", "09:00", "11:00")
	mon.Workdays = false
	mon.DayOfWeek = weekdayPtr(time.Monday)
	if _, err := r.Create(ctx, mon); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tue := block("Tuesday Focus", "09:00", "11:00")
	tue.Workdays = false
	tue.DayOfWeek = weekdayPtr(time.Tuesday)
	if _, err := r.Create(ctx, tue); err != nil {
		t.Errorf("disjoint weekdays should not conflict: %v", err)
	}
}

func TestRegistry_BreaksMayOverlap(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()

	if _, err := r.Create(ctx, block("Work", "09:00", "17:00")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	lunch := block("Lunch", "12:00", "13:00")
	lunch.IsBreak = true
	lunch.Energy = models.EnergyLow
	if _, err := r.Create(ctx, lunch); err != nil {
		t.Errorf("break block should be allowed to overlap: %v", err)
	}
}

func TestRegistry_UpdateConflict(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()

	a, err := r.Create(ctx, block("A", "09:00", "10:00"))
	if err != nil {
		t.Fatalf("Create A: %v", err)
	}
	if _, err := r.Create(ctx, block("B", "10:00", "11:00")); err != nil {
		t.Fatalf("Create B: %v", err)
	}

	a.End = "10:30"
	if _, err := r.Update(ctx, a); !apperr.IsConflict(err) {
		t.Errorf("edit overlapping another block should conflict, got %v", err)
	}
}

func TestRegistry_BlocksForDate(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()

	if _, err := r.Create(ctx, block("Weekday", "09:00", "11:00")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	sat := block("Saturday", "10:00", "12:00")
	sat.Workdays = false
	sat.DayOfWeek = weekdayPtr(time.Saturday)
	if _, err := r.Create(ctx, sat); err != nil {
		t.Fatalf("Create saturday: %v", err)
	}

	// 2026-08-31 is a Monday, 2026-09-05 a Saturday.
	monday, err := r.BlocksForDate("u1", "2026-08-31")
	if err != nil {
		t.Fatalf("BlocksForDate: %v", err)
	}
	if len(monday) != 1 || monday[0].Name != "Weekday" {
		t.Errorf("Monday blocks = %+v, want only Weekday", monday)
	}

	saturday, err := r.BlocksForDate("u1", "2026-09-05")
	if err != nil {
		t.Fatalf("BlocksForDate: %v", err)
	}
	if len(saturday) != 1 || saturday[0].Name != "Saturday" {
		t.Errorf("Saturday blocks = %+v, want only Saturday", saturday)
	}

	if _, err := r.BlocksForDate("u1", "not-a-date"); !apperr.IsValidation(err) {
		t.Errorf("bad date should fail validation, got %v", err)
	}
}

func TestRegistry_DeactivateHidesBlock(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()

	b, err := r.Create(ctx, block("Morning", "09:00", "11:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Deactivate(ctx, "u1", b.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	blocks, err := r.BlocksForDate("u1", "2026-08-31")
	if err != nil {
		t.Fatalf("BlocksForDate: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("deactivated block still resolved: %+v", blocks)
	}

	if err := r.Deactivate(ctx, "someone-else", b.ID); !apperr.IsNotFound(err) {
		t.Errorf("foreign user should get NotFound, got %v", err)
	}
}
