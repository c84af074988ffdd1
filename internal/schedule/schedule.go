// Package schedule builds read views over a date's blocks and assignments.
// Building is a pure merge: blocks resolved for the date joined with
// persisted scheduled tasks, including manual reassignments made after the
// last allocator run. Nothing here writes.
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/workdeck/planner/internal/cache"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/registry"
	"github.com/workdeck/planner/internal/storage"
	"github.com/workdeck/planner/internal/validation"
)

// Builder assembles daily schedules and their derived views.
type Builder struct {
	store    storage.Provider
	registry *registry.Registry
	cache    *cache.ScheduleCache
}

// NewBuilder wires a schedule builder. cache may be disabled but not nil.
func NewBuilder(store storage.Provider, reg *registry.Registry, c *cache.ScheduleCache) *Builder {
	return &Builder{store: store, registry: reg, cache: c}
}

// Build returns the merged schedule for (user, date), served from cache when
// warm.
func (b *Builder) Build(ctx context.Context, userID, date string) (models.DailySchedule, error) {
	if _, err := validation.ValidateDate(date); err != nil {
		return models.DailySchedule{}, err
	}
	if b.cache == nil {
		return b.build(userID, date)
	}
	var out models.DailySchedule
	err := b.cache.GetOrBuild(ctx, userID, date, &out, func(context.Context) (any, error) {
		return b.build(userID, date)
	})
	return out, err
}

// build is the uncached merge.
func (b *Builder) build(userID, date string) (models.DailySchedule, error) {
	blocks, err := b.registry.BlocksForDate(userID, date)
	if err != nil {
		return models.DailySchedule{}, err
	}
	tasks, err := b.store.GetScheduledTasksForDate(userID, date)
	if err != nil {
		return models.DailySchedule{}, err
	}

	byBlock := make(map[string][]models.ScheduledTask)
	for _, t := range tasks {
		byBlock[t.BlockID] = append(byBlock[t.BlockID], t)
	}

	out := models.DailySchedule{Date: date, Blocks: make([]models.ScheduleBlock, 0, len(blocks))}
	for _, block := range blocks {
		assigned := byBlock[block.ID]
		sort.SliceStable(assigned, func(i, j int) bool {
			if wi, wj := assigned[i].Priority.Weight(), assigned[j].Priority.Weight(); wi != wj {
				return wi > wj
			}
			return assigned[i].TaskID < assigned[j].TaskID
		})

		sb := models.ScheduleBlock{
			Block:       block,
			Tasks:       assigned,
			CapacityMin: block.DurationMin(),
		}
		for _, t := range assigned {
			if t.Status.Open() {
				sb.PlannedMin += t.EstimatedMin
			}
		}
		if sb.CapacityMin > 0 {
			sb.UtilizationPct = sb.PlannedMin * 100 / sb.CapacityMin
		}
		sb.Overcommitted = sb.PlannedMin > sb.CapacityMin

		if !block.IsBreak {
			out.TotalCapacityMin += sb.CapacityMin
			out.TotalPlannedMin += sb.PlannedMin
		}
		out.Blocks = append(out.Blocks, sb)
	}
	if out.TotalCapacityMin > 0 {
		out.UtilizationPct = out.TotalPlannedMin * 100 / out.TotalCapacityMin
	}
	return out, nil
}

// WeekView is seven consecutive daily schedules starting at StartDate.
type WeekView struct {
	StartDate string                 `json:"start_date"`
	Days      []models.DailySchedule `json:"days"`
}

// BuildWeek returns the schedules for the seven days starting at date.
func (b *Builder) BuildWeek(ctx context.Context, userID, date string) (WeekView, error) {
	start, err := validation.ValidateDate(date)
	if err != nil {
		return WeekView{}, err
	}
	// Weeks run Monday through Sunday regardless of the requested date.
	offset := (int(start.Weekday()) + 6) % 7
	start = start.AddDate(0, 0, -offset)
	view := WeekView{StartDate: models.FormatDate(start), Days: make([]models.DailySchedule, 0, 7)}
	for i := 0; i < 7; i++ {
		day, err := b.Build(ctx, userID, models.FormatDate(start.AddDate(0, 0, i)))
		if err != nil {
			return WeekView{}, err
		}
		view.Days = append(view.Days, day)
	}
	return view, nil
}

// MonthView is every daily schedule of one calendar month.
type MonthView struct {
	StartDate string                 `json:"start_date"`
	Days      []models.DailySchedule `json:"days"`
}

// BuildMonth returns the schedules for every day of the month containing
// date.
func (b *Builder) BuildMonth(ctx context.Context, userID, date string) (MonthView, error) {
	d, err := validation.ValidateDate(date)
	if err != nil {
		return MonthView{}, err
	}
	start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	days := start.AddDate(0, 1, 0).Sub(start).Hours() / 24
	view := MonthView{StartDate: models.FormatDate(start), Days: make([]models.DailySchedule, 0, int(days))}
	for i := 0; i < int(days); i++ {
		day, err := b.Build(ctx, userID, models.FormatDate(start.AddDate(0, 0, i)))
		if err != nil {
			return MonthView{}, err
		}
		view.Days = append(view.Days, day)
	}
	return view, nil
}

// Summary condenses one day's schedule for dashboard headers.
type Summary struct {
	Date             string `json:"date"`
	BlockCount       int    `json:"block_count"`
	TaskCount        int    `json:"task_count"`
	DoneCount        int    `json:"done_count"`
	TotalCapacityMin int    `json:"total_capacity_minutes"`
	TotalPlannedMin  int    `json:"total_planned_minutes"`
	UtilizationPct   int    `json:"utilization_percent"`
	Overcommitted    bool   `json:"overcommitted"`
}

// Summarize builds the day's schedule and reduces it to headline numbers.
func (b *Builder) Summarize(ctx context.Context, userID, date string) (Summary, error) {
	day, err := b.Build(ctx, userID, date)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{
		Date:             day.Date,
		BlockCount:       len(day.Blocks),
		TotalCapacityMin: day.TotalCapacityMin,
		TotalPlannedMin:  day.TotalPlannedMin,
		UtilizationPct:   day.UtilizationPct,
	}
	for _, sb := range day.Blocks {
		s.TaskCount += len(sb.Tasks)
		if sb.Overcommitted && !sb.Block.IsBreak {
			s.Overcommitted = true
		}
		for _, t := range sb.Tasks {
			if t.Status == models.StatusDone {
				s.DoneCount++
			}
		}
	}
	return s, nil
}
