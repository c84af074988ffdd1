// Package tracker drives scheduled-task status transitions: starting work,
// completing it, skipping, and manual reassignment between blocks. A
// completion always succeeds locally before any downstream notification;
// pattern learning and task-store callbacks never fail the transition.
package tracker

import (
	"context"
	"time"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/cache"
	"github.com/workdeck/planner/internal/learner"
	"github.com/workdeck/planner/internal/logger"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/storage"
	"github.com/workdeck/planner/internal/tasksupply"
)

// Tracker applies status transitions and fans out their side effects.
type Tracker struct {
	store   storage.Provider
	supply  tasksupply.Supply
	learner *learner.Learner
	cache   *cache.ScheduleCache
}

// New wires a tracker.
func New(store storage.Provider, supply tasksupply.Supply, l *learner.Learner, c *cache.ScheduleCache) *Tracker {
	return &Tracker{store: store, supply: supply, learner: l, cache: c}
}

// Start moves a planned assignment to in progress and notifies the task
// store. A supply failure is logged, not surfaced; the local transition is
// the source of truth.
func (t *Tracker) Start(ctx context.Context, userID, id string) (models.ScheduledTask, error) {
	st, err := t.owned(userID, id)
	if err != nil {
		return models.ScheduledTask{}, err
	}
	if st.Status != models.StatusPlanned {
		return models.ScheduledTask{}, &apperr.ValidationError{
			Field: "status", Reason: "only planned tasks can be started",
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if err := t.store.UpdateScheduledTaskStatus(id, models.StatusInProgress, now, nil); err != nil {
		return models.ScheduledTask{}, err
	}
	if err := t.supply.MarkInProgress(ctx, st.TaskID); err != nil {
		logger.Warn("task store start notification failed", "task", st.TaskID, "err", err)
	}
	t.invalidate(ctx, st)
	st.Status = models.StatusInProgress
	st.StartedAt = &now
	return st, nil
}

// Complete finishes an assignment with observed actuals and feeds the
// pattern learner. actualEnergy may be empty, in which case the scheduled
// energy requirement stands in.
func (t *Tracker) Complete(ctx context.Context, userID, id string, actualMin int, actualEnergy models.EnergyLevel) (models.ScheduledTask, error) {
	st, err := t.owned(userID, id)
	if err != nil {
		return models.ScheduledTask{}, err
	}
	if !st.Status.Open() {
		return models.ScheduledTask{}, &apperr.ValidationError{
			Field: "status", Reason: "task is already finished",
		}
	}
	if actualMin <= 0 {
		return models.ScheduledTask{}, &apperr.ValidationError{
			Field: "actual_minutes", Reason: "must be positive",
		}
	}
	if actualEnergy != "" && !actualEnergy.Valid() {
		return models.ScheduledTask{}, &apperr.ValidationError{
			Field: "actual_energy_level", Reason: "unknown energy level",
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := t.store.UpdateScheduledTaskStatus(id, models.StatusDone, now, &actualMin); err != nil {
		return models.ScheduledTask{}, err
	}
	if err := t.supply.MarkDone(ctx, st.TaskID, actualMin); err != nil {
		logger.Warn("task store completion notification failed", "task", st.TaskID, "err", err)
	}
	t.learner.ObserveCompletion(ctx, models.CompletionEvent{
		TaskID:       st.TaskID,
		Scheduled:    st,
		ActualMin:    actualMin,
		ActualEnergy: actualEnergy,
		CompletedAt:  now,
	})
	t.invalidate(ctx, st)
	st.Status = models.StatusDone
	st.CompletedAt = &now
	st.ActualMin = &actualMin
	return st, nil
}

// Skip marks an open assignment as skipped; the learner observes the miss.
func (t *Tracker) Skip(ctx context.Context, userID, id string) (models.ScheduledTask, error) {
	st, err := t.owned(userID, id)
	if err != nil {
		return models.ScheduledTask{}, err
	}
	if !st.Status.Open() {
		return models.ScheduledTask{}, &apperr.ValidationError{
			Field: "status", Reason: "task is already finished",
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if err := t.store.UpdateScheduledTaskStatus(id, models.StatusSkipped, now, nil); err != nil {
		return models.ScheduledTask{}, err
	}
	t.learner.ObserveSkip(ctx, st)
	t.invalidate(ctx, st)
	st.Status = models.StatusSkipped
	return st, nil
}

// Reassign moves an open assignment to another of the user's blocks (manual
// drag-and-drop). Capacity is not enforced here; schedule views flag the
// target block as overcommitted instead.
func (t *Tracker) Reassign(ctx context.Context, userID, id, blockID string) (models.ScheduledTask, error) {
	st, err := t.owned(userID, id)
	if err != nil {
		return models.ScheduledTask{}, err
	}
	if !st.Status.Open() {
		return models.ScheduledTask{}, &apperr.ValidationError{
			Field: "status", Reason: "finished tasks cannot be moved",
		}
	}
	block, err := t.store.GetTimeBlock(blockID)
	if err != nil {
		return models.ScheduledTask{}, err
	}
	if block.UserID != userID {
		return models.ScheduledTask{}, &apperr.NotFoundError{Kind: "block", ID: blockID}
	}
	if block.IsBreak {
		return models.ScheduledTask{}, &apperr.ValidationError{
			Field: "block_id", Reason: "tasks cannot be assigned to break blocks",
		}
	}
	if err := t.store.ReassignScheduledTask(id, blockID); err != nil {
		return models.ScheduledTask{}, err
	}
	t.invalidate(ctx, st)
	st.BlockID = blockID
	return st, nil
}

func (t *Tracker) owned(userID, id string) (models.ScheduledTask, error) {
	st, err := t.store.GetScheduledTask(id)
	if err != nil {
		return models.ScheduledTask{}, err
	}
	if st.UserID != userID {
		return models.ScheduledTask{}, &apperr.NotFoundError{Kind: "scheduled task", ID: id}
	}
	return st, nil
}

func (t *Tracker) invalidate(ctx context.Context, st models.ScheduledTask) {
	if t.cache != nil {
		t.cache.Invalidate(ctx, st.UserID, st.Date)
	}
}
