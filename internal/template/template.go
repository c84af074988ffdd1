// Package template manages day templates and their expansion into concrete
// time blocks. Application is all-or-nothing: a single overlap with the
// user's existing active blocks rejects the whole template.
package template

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/cache"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/storage"
	"github.com/workdeck/planner/internal/validation"
)

// Applier owns day templates and expands them into the block registry.
type Applier struct {
	store storage.Provider
	cache *cache.ScheduleCache
}

// NewApplier wires a template applier.
func NewApplier(store storage.Provider, c *cache.ScheduleCache) *Applier {
	return &Applier{store: store, cache: c}
}

// Create validates and persists a new template at version 1.
func (a *Applier) Create(tpl models.DayTemplate) (models.DayTemplate, error) {
	if err := validation.ValidateTemplate(tpl); err != nil {
		return models.DayTemplate{}, err
	}
	tpl.ID = uuid.NewString()
	tpl.Version = 1
	tpl.AppliedCount = 0
	tpl.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := a.store.AddDayTemplate(tpl); err != nil {
		return models.DayTemplate{}, fmt.Errorf("failed to create template: %w", err)
	}
	return tpl, nil
}

// Update edits a template. Once a template has apply history it is frozen;
// an edit then becomes a new row at the next version.
func (a *Applier) Update(tpl models.DayTemplate) (models.DayTemplate, error) {
	if err := validation.ValidateTemplate(tpl); err != nil {
		return models.DayTemplate{}, err
	}
	existing, err := a.store.GetDayTemplate(tpl.ID)
	if err != nil {
		return models.DayTemplate{}, err
	}
	if existing.UserID != tpl.UserID {
		return models.DayTemplate{}, &apperr.NotFoundError{Kind: "template", ID: tpl.ID}
	}
	if existing.Applied() {
		tpl.ID = uuid.NewString()
		tpl.Version = existing.Version + 1
		tpl.AppliedCount = 0
		tpl.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		if err := a.store.AddDayTemplate(tpl); err != nil {
			return models.DayTemplate{}, fmt.Errorf("failed to version template: %w", err)
		}
		return tpl, nil
	}
	tpl.Version = existing.Version
	tpl.CreatedAt = existing.CreatedAt
	if err := a.store.UpdateDayTemplate(tpl); err != nil {
		return models.DayTemplate{}, fmt.Errorf("failed to update template: %w", err)
	}
	return tpl, nil
}

// Get returns a template scoped to the user.
func (a *Applier) Get(userID, id string) (models.DayTemplate, error) {
	tpl, err := a.store.GetDayTemplate(id)
	if err != nil {
		return models.DayTemplate{}, err
	}
	if tpl.UserID != userID {
		return models.DayTemplate{}, &apperr.NotFoundError{Kind: "template", ID: id}
	}
	return tpl, nil
}

// List returns the user's templates.
func (a *Applier) List(userID string) ([]models.DayTemplate, error) {
	return a.store.GetDayTemplates(userID)
}

// Apply expands the template into concrete blocks for the user. Every
// expanded non-break block is projected against the user's existing active
// blocks; one collision rejects the whole application. Returns the number
// of blocks created.
func (a *Applier) Apply(ctx context.Context, userID, orgID, templateID string) (int, error) {
	tpl, err := a.Get(userID, templateID)
	if err != nil {
		return 0, err
	}
	blocks := tpl.Expand(userID, orgID)
	now := time.Now().UTC().Format(time.RFC3339)
	for i := range blocks {
		blocks[i].ID = uuid.NewString()
		blocks[i].CreatedAt = now
		if err := validation.ValidateTimeBlock(blocks[i]); err != nil {
			return 0, err
		}
	}

	existing, err := a.store.GetActiveTimeBlocks(userID)
	if err != nil {
		return 0, err
	}
	var collisions []apperr.ConflictError
	for _, nb := range blocks {
		if nb.IsBreak {
			continue
		}
		for _, ob := range existing {
			if ob.IsBreak {
				continue
			}
			if conflicts, days := nb.ConflictsWith(ob); conflicts {
				collisions = append(collisions, apperr.ConflictError{
					BlockID:   nb.ID,
					OtherID:   ob.ID,
					TimeRange: fmt.Sprintf("%s-%s", ob.Start, ob.End),
					Days:      days,
				})
			}
		}
	}
	if len(collisions) > 0 {
		return 0, &apperr.TemplateConflictError{TemplateID: templateID, Collisions: collisions}
	}

	if err := a.store.ApplyDayTemplate(templateID, blocks); err != nil {
		return 0, fmt.Errorf("failed to apply template: %w", err)
	}
	a.invalidate(ctx, userID)
	return len(blocks), nil
}

// StandardWorkday is the built-in Mon-Fri template: deep work in the
// morning, collaborative work either side of lunch, shallow work to close.
func StandardWorkday(userID, orgID string) models.DayTemplate {
	return models.DayTemplate{
		UserID:  userID,
		OrgID:   orgID,
		Name:    "Standard Workday",
		Version: 1,
		Blocks: []models.TemplateBlock{
			{Name: "Deep Work", Start: "08:00", End: "11:00", Workdays: true, Energy: models.EnergyHigh},
			{Name: "Collaboration", Start: "11:00", End: "12:30", Workdays: true, Energy: models.EnergyMedium},
			{Name: "Lunch", Start: "12:30", End: "13:30", Workdays: true, Energy: models.EnergyLow, IsBreak: true},
			{Name: "Focused Work", Start: "13:30", End: "15:30", Workdays: true, Energy: models.EnergyMedium},
			{Name: "Admin & Email", Start: "15:30", End: "17:00", Workdays: true, Energy: models.EnergyLow},
		},
	}
}

func (a *Applier) invalidate(ctx context.Context, userID string) {
	if a.cache == nil {
		return
	}
	today := time.Now()
	for i := 0; i < 14; i++ {
		a.cache.Invalidate(ctx, userID, models.FormatDate(today.AddDate(0, 0, i)))
	}
}
