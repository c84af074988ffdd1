// Package recommend picks the next best task to work on right now. It is
// advisory only and never mutates state.
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/workdeck/planner/internal/learner"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/schedule"
)

const completionWeight = 30.0

// Engine scores a block's remaining planned tasks against priority, due
// proximity, and the user's learned completion odds for the block's hour.
type Engine struct {
	builder *schedule.Builder
	learner *learner.Learner
}

// New wires a recommendation engine.
func New(builder *schedule.Builder, l *learner.Learner) *Engine {
	return &Engine{builder: builder, learner: l}
}

// Next returns the top suggestion for the block containing at, or the next
// upcoming block that day. Nil means nothing to suggest: the active block is
// a break, has no planned tasks left, or the day has no applicable blocks.
func (e *Engine) Next(ctx context.Context, userID string, at time.Time) (*models.TaskSuggestion, error) {
	date := models.FormatDate(at)
	day, err := e.builder.Build(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	current := activeBlock(day, at)
	if current == nil || current.Block.IsBreak {
		return nil, nil
	}

	hour := blockHour(current.Block)
	var best *models.TaskSuggestion
	for _, t := range current.Tasks {
		if t.Status != models.StatusPlanned {
			continue
		}
		score := e.score(userID, t, date, hour)
		if best == nil || score > best.Score || (score == best.Score && t.TaskID < best.TaskID) {
			best = &models.TaskSuggestion{
				TaskID:  t.TaskID,
				BlockID: current.Block.ID,
				Score:   score,
				Reason:  e.reason(t, date),
			}
		}
	}
	return best, nil
}

// activeBlock resolves the block whose window contains at, else the next
// block starting later that day.
func activeBlock(day models.DailySchedule, at time.Time) *models.ScheduleBlock {
	nowMin := at.Hour()*60 + at.Minute()
	var next *models.ScheduleBlock
	for i := range day.Blocks {
		sb := &day.Blocks[i]
		start, err := models.ParseClock(sb.Block.Start)
		if err != nil {
			continue
		}
		end, err := models.ParseClock(sb.Block.End)
		if err != nil {
			continue
		}
		if start <= nowMin && nowMin < end {
			return sb
		}
		if start > nowMin && next == nil {
			next = sb
		}
	}
	return next
}

func blockHour(b models.TimeBlock) int {
	if min, err := models.ParseClock(b.Start); err == nil {
		return min / 60
	}
	return 0
}

// score combines priority weight, due-date proximity, and learned completion
// odds for this energy level at this hour.
func (e *Engine) score(userID string, t models.ScheduledTask, date string, hour int) float64 {
	s := float64(t.Priority.Weight())
	s += float64(dueProximityBonus(t.DueDate, date))
	p := e.learner.PatternFor(userID, t.Energy, hour)
	s += p.CompletionRate * completionWeight
	return s
}

// dueProximityBonus rewards tasks closing in on their due date. Overdue and
// due-today share the top bonus.
func dueProximityBonus(due, date string) int {
	if due == "" {
		return 0
	}
	d, err := models.ParseDate(due)
	if err != nil {
		return 0
	}
	today, err := models.ParseDate(date)
	if err != nil {
		return 0
	}
	days := int(d.Sub(today).Hours() / 24)
	switch {
	case days <= 1:
		return 40
	case days <= 3:
		return 25
	case days <= 7:
		return 10
	default:
		return 0
	}
}

func (e *Engine) reason(t models.ScheduledTask, date string) string {
	if t.DueDate != "" && t.DueDate <= date {
		return fmt.Sprintf("%s priority, due %s", t.Priority, t.DueDate)
	}
	if bonus := dueProximityBonus(t.DueDate, date); bonus > 0 {
		return fmt.Sprintf("%s priority, due soon (%s)", t.Priority, t.DueDate)
	}
	return fmt.Sprintf("%s priority", t.Priority)
}
