package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "planner.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleBlock(id string) models.TimeBlock {
	return models.TimeBlock{
		ID: id, UserID: "u1", OrgID: "org1", Name: "Focus " + id,
		Start: "09:00", End: "11:00", Workdays: true,
		Energy: models.EnergyHigh, IsActive: true,
		CreatedAt: "2026-08-31T08:00:00Z",
	}
}

func TestStore_BlockRoundtrip(t *testing.T) {
	s := newTestStore(t)

	wd := time.Wednesday
	b := sampleBlock("b1")
	b.Workdays = false
	b.DayOfWeek = &wd
	if err := s.AddTimeBlock(b); err != nil {
		t.Fatalf("AddTimeBlock: %v", err)
	}

	got, err := s.GetTimeBlock("b1")
	if err != nil {
		t.Fatalf("GetTimeBlock: %v", err)
	}
	if got.Name != b.Name || got.Start != b.Start || got.Energy != b.Energy {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if got.DayOfWeek == nil || *got.DayOfWeek != time.Wednesday {
		t.Errorf("DayOfWeek = %v, want Wednesday", got.DayOfWeek)
	}

	if _, err := s.GetTimeBlock("missing"); !apperr.IsNotFound(err) {
		t.Errorf("missing block should be NotFound, got %v", err)
	}
}

func TestStore_DeactivateBlock(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddTimeBlock(sampleBlock("b1")); err != nil {
		t.Fatalf("AddTimeBlock: %v", err)
	}
	if err := s.DeactivateTimeBlock("b1"); err != nil {
		t.Fatalf("DeactivateTimeBlock: %v", err)
	}

	active, err := s.GetActiveTimeBlocks("u1")
	if err != nil {
		t.Fatalf("GetActiveTimeBlocks: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("deactivated block still active: %+v", active)
	}
	// The row survives for historical references.
	if _, err := s.GetTimeBlock("b1"); err != nil {
		t.Errorf("deactivated block should remain readable: %v", err)
	}
}

func TestStore_ScheduledTaskLifecycle(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddTimeBlock(sampleBlock("b1")); err != nil {
		t.Fatalf("AddTimeBlock: %v", err)
	}
	st := models.ScheduledTask{
		ID: "s1", UserID: "u1", OrgID: "org1", TaskID: "t1", BlockID: "b1",
		Date: "2026-08-31", EstimatedMin: 60, Status: models.StatusPlanned,
		Priority: models.PriorityHigh, Energy: models.EnergyHigh,
		CreatedAt: "2026-08-31T08:00:00Z",
	}
	if err := s.SaveScheduledTask(st); err != nil {
		t.Fatalf("SaveScheduledTask: %v", err)
	}

	if err := s.UpdateScheduledTaskStatus("s1", models.StatusInProgress, "2026-08-31T09:00:00Z", nil); err != nil {
		t.Fatalf("mark in progress: %v", err)
	}
	got, err := s.GetScheduledTask("s1")
	if err != nil {
		t.Fatalf("GetScheduledTask: %v", err)
	}
	if got.Status != models.StatusInProgress || got.StartedAt == nil {
		t.Errorf("after start: %+v", got)
	}

	actual := 75
	if err := s.UpdateScheduledTaskStatus("s1", models.StatusDone, "2026-08-31T10:15:00Z", &actual); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	got, err = s.GetScheduledTask("s1")
	if err != nil {
		t.Fatalf("GetScheduledTask: %v", err)
	}
	if got.Status != models.StatusDone || got.ActualMin == nil || *got.ActualMin != 75 {
		t.Errorf("after done: %+v", got)
	}
}

func TestStore_DeletePlannedForDateKeepsOpenWork(t *testing.T) {
	s := newTestStore(t)
	base := models.ScheduledTask{
		UserID: "u1", OrgID: "org1", BlockID: "b1", Date: "2026-08-31",
		EstimatedMin: 30, Priority: models.PriorityMedium, Energy: models.EnergyMedium,
		CreatedAt: "2026-08-31T08:00:00Z",
	}
	planned := base
	planned.ID, planned.TaskID, planned.Status = "s-planned", "t1", models.StatusPlanned
	inProgress := base
	inProgress.ID, inProgress.TaskID, inProgress.Status = "s-ip", "t2", models.StatusInProgress
	done := base
	done.ID, done.TaskID, done.Status = "s-done", "t3", models.StatusDone

	for _, st := range []models.ScheduledTask{planned, inProgress, done} {
		if err := s.SaveScheduledTask(st); err != nil {
			t.Fatalf("SaveScheduledTask %s: %v", st.ID, err)
		}
	}

	if err := s.DeletePlannedForDate("u1", "2026-08-31"); err != nil {
		t.Fatalf("DeletePlannedForDate: %v", err)
	}

	rows, err := s.GetScheduledTasksForDate("u1", "2026-08-31")
	if err != nil {
		t.Fatalf("GetScheduledTasksForDate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("%d rows remain, want 2", len(rows))
	}
	for _, r := range rows {
		if r.Status == models.StatusPlanned {
			t.Errorf("planned row %s survived the delete", r.ID)
		}
	}
}

func TestStore_PatternUpsert(t *testing.T) {
	s := newTestStore(t)
	p := models.UserPattern{
		UserID: "u1", Energy: models.EnergyHigh, HourOfDay: 14,
		DurationRatio: 1.2, RatioVariance: 0.05, CompletionRate: 0.9,
		Observations: 4, UpdatedAt: "2026-08-31T10:00:00Z",
	}
	if err := s.UpsertUserPattern(p); err != nil {
		t.Fatalf("UpsertUserPattern: %v", err)
	}

	p.DurationRatio = 1.3
	p.Observations = 5
	if err := s.UpsertUserPattern(p); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.GetUserPattern("u1", models.EnergyHigh, 14)
	if err != nil {
		t.Fatalf("GetUserPattern: %v", err)
	}
	if got.DurationRatio != 1.3 || got.Observations != 5 {
		t.Errorf("upsert did not replace: %+v", got)
	}

	all, err := s.GetUserPatterns("u1")
	if err != nil {
		t.Fatalf("GetUserPatterns: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("%d pattern rows, want 1 after upsert", len(all))
	}

	if _, err := s.GetUserPattern("u1", models.EnergyLow, 9); !apperr.IsNotFound(err) {
		t.Errorf("missing pattern should be NotFound, got %v", err)
	}
}

func TestStore_TemplateApplyTransactional(t *testing.T) {
	s := newTestStore(t)
	tpl := models.DayTemplate{
		ID: "tpl1", UserID: "u1", OrgID: "org1", Name: "Focus Day", Version: 1,
		Blocks: []models.TemplateBlock{
			{Name: "Morning", Start: "09:00", End: "11:00", Workdays: true, Energy: models.EnergyHigh},
		},
		CreatedAt: "2026-08-31T08:00:00Z",
	}
	if err := s.AddDayTemplate(tpl); err != nil {
		t.Fatalf("AddDayTemplate: %v", err)
	}

	blocks := tpl.Expand("u1", "org1")
	blocks[0].ID = "b-tpl"
	blocks[0].CreatedAt = "2026-08-31T08:00:00Z"
	if err := s.ApplyDayTemplate("tpl1", blocks); err != nil {
		t.Fatalf("ApplyDayTemplate: %v", err)
	}

	got, err := s.GetDayTemplate("tpl1")
	if err != nil {
		t.Fatalf("GetDayTemplate: %v", err)
	}
	if got.AppliedCount != 1 {
		t.Errorf("AppliedCount = %d, want 1", got.AppliedCount)
	}
	if len(got.Blocks) != 1 || got.Blocks[0].Name != "Morning" {
		t.Errorf("blocks JSON roundtrip mismatch: %+v", got.Blocks)
	}

	// Applying against an unknown template must create nothing.
	blocks[0].ID = "b-orphan"
	if err := s.ApplyDayTemplate("missing", blocks); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, err := s.GetTimeBlock("b-orphan"); !apperr.IsNotFound(err) {
		t.Error("failed apply leaked a block row")
	}
}

func TestStore_AllocationFingerprint(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetAllocationFingerprint("u1", "2026-08-31")
	if err != nil || got != "" {
		t.Fatalf("empty fingerprint read = %q, %v", got, err)
	}

	if err := s.SaveAllocationFingerprint("u1", "2026-08-31", "abc123"); err != nil {
		t.Fatalf("SaveAllocationFingerprint: %v", err)
	}
	if err := s.SaveAllocationFingerprint("u1", "2026-08-31", "def456"); err != nil {
		t.Fatalf("overwrite fingerprint: %v", err)
	}

	got, err = s.GetAllocationFingerprint("u1", "2026-08-31")
	if err != nil {
		t.Fatalf("GetAllocationFingerprint: %v", err)
	}
	if got != "def456" {
		t.Errorf("fingerprint = %q, want def456", got)
	}
}

func TestStore_LoadRequiresInit(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := s.Load(); err == nil {
		t.Error("Load before Init should fail")
	}
}
