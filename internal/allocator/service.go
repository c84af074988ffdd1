package allocator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/cache"
	"github.com/workdeck/planner/internal/learner"
	"github.com/workdeck/planner/internal/lock"
	"github.com/workdeck/planner/internal/logger"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/registry"
	"github.com/workdeck/planner/internal/storage"
	"github.com/workdeck/planner/internal/tasksupply"
	"github.com/workdeck/planner/internal/validation"
)

// ErrSuperseded marks an allocation run invalidated by a newer block edit
// for the same (user, date). The caller retries against the fresh state.
var ErrSuperseded = errors.New("allocation superseded by a newer edit")

// Service orchestrates allocation runs: serialization per (user, date),
// bounded task-supply fetches, pattern-adjusted packing, and idempotent
// persistence.
type Service struct {
	store    storage.Provider
	registry *registry.Registry
	supply   tasksupply.Supply
	learner  *learner.Learner
	cache    *cache.ScheduleCache
	locks    *lock.Keyed
}

// NewService wires an allocator service.
func NewService(store storage.Provider, reg *registry.Registry, supply tasksupply.Supply, l *learner.Learner, c *cache.ScheduleCache, locks *lock.Keyed) *Service {
	return &Service{store: store, registry: reg, supply: supply, learner: l, cache: c, locks: locks}
}

// fingerprintInput captures everything that determines an allocation
// outcome. An unchanged hash means re-running would reproduce the persisted
// assignments, so persistence is skipped.
type fingerprintInput struct {
	Date       string
	Blocks     []models.TimeBlock
	Candidates []tasksupply.Task
	Occupied   []string // task ids already in progress or done
	Patterns   []models.UserPattern
}

// Allocate runs one allocation pass for (user, date). A task-supply timeout
// degrades to a partial run over whatever candidates arrived in time.
func (s *Service) Allocate(ctx context.Context, userID, orgID, date string) (models.AllocationResult, error) {
	if _, err := validation.ValidateDate(date); err != nil {
		return models.AllocationResult{}, err
	}

	key := lock.Key(userID, date)
	release, gen := s.locks.Acquire(key)
	defer release()

	blocks, err := s.registry.BlocksForDate(userID, date)
	if err != nil {
		return models.AllocationResult{}, err
	}

	existing, err := s.store.GetScheduledTasksForDate(userID, date)
	if err != nil {
		return models.AllocationResult{}, err
	}
	occupied := make(map[string]bool)
	var occupiedIDs []string
	remaining := make(map[string]int)
	for _, b := range blocks {
		if !b.IsBreak {
			remaining[b.ID] = b.DurationMin()
		}
	}
	plannedByTask := make(map[string]models.ScheduledTask)
	for _, st := range existing {
		switch st.Status {
		case models.StatusPlanned:
			plannedByTask[st.TaskID] = st
		case models.StatusInProgress, models.StatusDone:
			occupied[st.TaskID] = true
			occupiedIDs = append(occupiedIDs, st.TaskID)
			if st.Status == models.StatusInProgress {
				remaining[st.BlockID] -= st.EstimatedMin
			}
		}
	}

	candidates, partial, err := s.fetchCandidates(ctx, userID, date)
	if err != nil {
		return models.AllocationResult{}, err
	}
	eligible := candidates[:0:0]
	seen := make(map[string]bool, len(candidates))
	for _, t := range candidates {
		if !occupied[t.ID] {
			eligible = append(eligible, t)
			seen[t.ID] = true
		}
	}
	if partial {
		// The supply timed out before listing everything; the rows already
		// planned for this date stay in the running so a degraded run never
		// discards prior assignments.
		for _, st := range existing {
			if st.Status != models.StatusPlanned || seen[st.TaskID] {
				continue
			}
			eligible = append(eligible, tasksupply.Task{
				ID:           st.TaskID,
				EstimatedMin: st.EstimatedMin,
				Priority:     st.Priority,
				DueDate:      st.DueDate,
				Energy:       st.Energy,
				Context:      st.Context,
			})
		}
	}

	patterns, perr := s.learner.Patterns(userID)
	if perr != nil {
		logger.Warn("pattern listing failed, allocating with cold-start defaults", "user", userID, "err", perr)
	}

	hash := s.fingerprint(fingerprintInput{
		Date:       date,
		Blocks:     blocks,
		Candidates: eligible,
		Occupied:   occupiedIDs,
		Patterns:   patterns,
	})

	states := make([]blockState, 0, len(blocks))
	for _, b := range blocks {
		if b.IsBreak {
			continue
		}
		states = append(states, blockState{block: b, remaining: remaining[b.ID]})
	}
	res := pack(states, eligible, date, s.adjustFor(userID))

	unchanged := false
	if hash != "" {
		stored, ferr := s.store.GetAllocationFingerprint(userID, date)
		if ferr == nil && stored == hash {
			unchanged = true
		}
	}

	result := models.AllocationResult{Date: date, Deferred: res.deferred, Partial: partial}

	if unchanged {
		// Same inputs as the persisted run; return the stored assignments.
		for _, taskID := range res.order {
			if st, ok := plannedByTask[taskID]; ok {
				result.Assigned = append(result.Assigned, st)
			}
		}
		if len(result.Assigned) == len(res.order) {
			return result, nil
		}
		// Stored rows diverged from the recomputed pack, fall through and
		// persist fresh.
		result.Assigned = nil
	}

	if !s.locks.IsCurrent(key, gen) {
		return models.AllocationResult{}, ErrSuperseded
	}

	if err := s.store.DeletePlannedForDate(userID, date); err != nil {
		return models.AllocationResult{}, fmt.Errorf("failed to clear planned assignments: %w", err)
	}
	byID := make(map[string]tasksupply.Task, len(eligible))
	for _, t := range eligible {
		byID[t.ID] = t
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, taskID := range res.order {
		if prev, ok := plannedByTask[taskID]; ok && prev.BlockID == res.assigned[taskID] {
			// Task stays where it was; keep the original row.
			if err := s.store.SaveScheduledTask(prev); err != nil {
				return models.AllocationResult{}, fmt.Errorf("failed to persist assignment for task %s: %w", taskID, err)
			}
			result.Assigned = append(result.Assigned, prev)
			continue
		}
		t := byID[taskID]
		st := models.ScheduledTask{
			ID:           uuid.NewString(),
			UserID:       userID,
			OrgID:        orgID,
			TaskID:       t.ID,
			BlockID:      res.assigned[taskID],
			Date:         date,
			EstimatedMin: t.EstimatedMin,
			Status:       models.StatusPlanned,
			Context:      t.Context,
			Priority:     t.Priority,
			Energy:       t.Energy,
			DueDate:      t.DueDate,
			CreatedAt:    now,
		}
		if err := s.store.SaveScheduledTask(st); err != nil {
			return models.AllocationResult{}, fmt.Errorf("failed to persist assignment for task %s: %w", t.ID, err)
		}
		result.Assigned = append(result.Assigned, st)
	}
	if hash != "" && !partial {
		if err := s.store.SaveAllocationFingerprint(userID, date, hash); err != nil {
			logger.Warn("failed to save allocation fingerprint", "user", userID, "date", date, "err", err)
		}
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID, date)
	}
	return result, nil
}

// Supersede invalidates in-flight allocation runs for (user, date). Called
// by the registry path when a block edit lands mid-run.
func (s *Service) Supersede(userID, date string) {
	s.locks.Supersede(lock.Key(userID, date))
}

// fetchCandidates lists eligible tasks under the supply's bounded timeout.
// A timeout yields an empty candidate set and a partial run, never an error.
func (s *Service) fetchCandidates(ctx context.Context, userID, date string) ([]tasksupply.Task, bool, error) {
	tasks, err := s.supply.ListEligible(ctx, userID, date)
	if err != nil {
		if apperr.IsDependencyTimeout(err) {
			logger.Warn("task supply timed out, running partial allocation", "user", userID, "date", date, "err", err)
			return tasks, true, nil
		}
		return nil, false, err
	}
	return tasks, false, nil
}

// adjustFor resolves the pattern-adjusted duration of a task placed at a
// block's starting hour.
func (s *Service) adjustFor(userID string) func(tasksupply.Task, models.TimeBlock) int {
	return func(t tasksupply.Task, b models.TimeBlock) int {
		hour := 0
		if min, err := models.ParseClock(b.Start); err == nil {
			hour = min / 60
		}
		p := s.learner.PatternFor(userID, t.Energy, hour)
		return p.AdjustMinutes(t.EstimatedMin)
	}
}

func (s *Service) fingerprint(in fingerprintInput) string {
	h, err := hashstructure.Hash(in, hashstructure.FormatV2, nil)
	if err != nil {
		logger.Warn("fingerprint hashing failed", "err", err)
		return ""
	}
	return fmt.Sprintf("%x", h)
}
