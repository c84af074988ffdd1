// Package registry manages recurring time blocks: creation with recurrence
// projection against existing blocks, resolution of blocks for a calendar
// date, and soft deactivation.
package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/cache"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/storage"
	"github.com/workdeck/planner/internal/validation"
)

// Registry owns the active block set per user.
type Registry struct {
	store storage.Provider
	cache *cache.ScheduleCache
}

// New creates a registry over the given store. cache may be nil-valued
// (disabled) but not nil.
func New(store storage.Provider, c *cache.ScheduleCache) *Registry {
	return &Registry{store: store, cache: c}
}

// Create validates the block, checks it against every active block of the
// same user across all shared recurrence days, and persists it. Break blocks
// may overlap anything.
func (r *Registry) Create(ctx context.Context, block models.TimeBlock) (models.TimeBlock, error) {
	if err := validation.ValidateTimeBlock(block); err != nil {
		return models.TimeBlock{}, err
	}
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	block.IsActive = true
	block.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := r.checkConflicts(block); err != nil {
		return models.TimeBlock{}, err
	}
	if err := r.store.AddTimeBlock(block); err != nil {
		return models.TimeBlock{}, fmt.Errorf("failed to create block: %w", err)
	}
	r.invalidateAll(ctx, block.UserID)
	return block, nil
}

// Update replaces a block's definition. The block keeps its identity; the
// updated recurrence and window are re-checked against all other active
// blocks.
func (r *Registry) Update(ctx context.Context, block models.TimeBlock) (models.TimeBlock, error) {
	if err := validation.ValidateTimeBlock(block); err != nil {
		return models.TimeBlock{}, err
	}
	existing, err := r.store.GetTimeBlock(block.ID)
	if err != nil {
		return models.TimeBlock{}, err
	}
	block.UserID = existing.UserID
	block.OrgID = existing.OrgID
	block.CreatedAt = existing.CreatedAt
	block.IsActive = existing.IsActive

	if err := r.checkConflicts(block); err != nil {
		return models.TimeBlock{}, err
	}
	if err := r.store.UpdateTimeBlock(block); err != nil {
		return models.TimeBlock{}, fmt.Errorf("failed to update block: %w", err)
	}
	r.invalidateAll(ctx, block.UserID)
	return block, nil
}

// Deactivate soft-deletes a block. Scheduled tasks that reference it keep
// their rows; future schedules simply stop materializing the block.
func (r *Registry) Deactivate(ctx context.Context, userID, id string) error {
	block, err := r.store.GetTimeBlock(id)
	if err != nil {
		return err
	}
	if block.UserID != userID {
		return &apperr.NotFoundError{Kind: "block", ID: id}
	}
	if err := r.store.DeactivateTimeBlock(id); err != nil {
		return err
	}
	r.invalidateAll(ctx, userID)
	return nil
}

// Get returns a single block scoped to the user.
func (r *Registry) Get(userID, id string) (models.TimeBlock, error) {
	block, err := r.store.GetTimeBlock(id)
	if err != nil {
		return models.TimeBlock{}, err
	}
	if block.UserID != userID {
		return models.TimeBlock{}, &apperr.NotFoundError{Kind: "block", ID: id}
	}
	return block, nil
}

// List returns the user's active blocks ordered by start time then name.
func (r *Registry) List(userID string) ([]models.TimeBlock, error) {
	blocks, err := r.store.GetActiveTimeBlocks(userID)
	if err != nil {
		return nil, err
	}
	sortBlocks(blocks)
	return blocks, nil
}

// BlocksForDate resolves the user's recurring blocks against a calendar
// date. A workdays block and a same-weekday block that are the same row
// appear once; the result is ordered by start time.
func (r *Registry) BlocksForDate(userID, date string) ([]models.TimeBlock, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "date", Reason: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date)}
	}
	blocks, err := r.store.GetActiveTimeBlocks(userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(blocks))
	var out []models.TimeBlock
	for _, b := range blocks {
		if !b.AppliesTo(day) || seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	sortBlocks(out)
	return out, nil
}

// checkConflicts projects the candidate against all other active non-break
// blocks and reports the first overlap.
func (r *Registry) checkConflicts(candidate models.TimeBlock) error {
	if candidate.IsBreak {
		return nil
	}
	existing, err := r.store.GetActiveTimeBlocks(candidate.UserID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.IsBreak {
			continue
		}
		if conflicts, days := candidate.ConflictsWith(other); conflicts {
			return &apperr.ConflictError{
				BlockID:   candidate.ID,
				OtherID:   other.ID,
				TimeRange: fmt.Sprintf("%s-%s", other.Start, other.End),
				Days:      days,
			}
		}
	}
	return nil
}

// invalidateAll drops cached schedules for the coming two weeks, the horizon
// recurring-block edits affect in practice.
func (r *Registry) invalidateAll(ctx context.Context, userID string) {
	if r.cache == nil {
		return
	}
	today := time.Now()
	for i := 0; i < 14; i++ {
		r.cache.Invalidate(ctx, userID, models.FormatDate(today.AddDate(0, 0, i)))
	}
}

func sortBlocks(blocks []models.TimeBlock) {
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Start != blocks[j].Start {
			return blocks[i].Start < blocks[j].Start
		}
		return blocks[i].Name < blocks[j].Name
	})
}
