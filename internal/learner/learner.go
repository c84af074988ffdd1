// Package learner maintains per-user execution patterns from completion
// events. Observations are folded into exponentially weighted moving
// averages keyed by (energy level, hour of day); persistence happens on a
// background worker so completion requests never wait on it.
package learner

import (
	"context"
	"time"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/constants"
	"github.com/workdeck/planner/internal/logger"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/storage"
)

type observation struct {
	userID    string
	energy    models.EnergyLevel
	hourOfDay int
	ratio     float64
	hasRatio  bool
	completed bool
}

// Learner smooths observed durations and completion outcomes into
// UserPattern rows.
type Learner struct {
	store storage.Provider
	alpha float64
	queue chan observation
	done  chan struct{}
}

// New starts a learner with the given smoothing factor. Close drains the
// queue and stops the worker.
func New(store storage.Provider, alpha float64) *Learner {
	if alpha <= 0 || alpha >= 1 {
		alpha = constants.DefaultSmoothingAlpha
	}
	l := &Learner{
		store: store,
		alpha: alpha,
		queue: make(chan observation, constants.LearnerQueueSize),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

// PatternFor returns the learned pattern for (user, energy, hour), falling
// back to neutral cold-start values when no observations exist yet.
func (l *Learner) PatternFor(userID string, energy models.EnergyLevel, hourOfDay int) models.UserPattern {
	p, err := l.store.GetUserPattern(userID, energy, hourOfDay)
	if err == nil {
		return p
	}
	if !apperr.IsNotFound(err) {
		logger.Warn("pattern lookup failed, using cold-start defaults", "user", userID, "err", err)
	}
	return models.UserPattern{
		UserID:         userID,
		Energy:         energy,
		HourOfDay:      hourOfDay,
		DurationRatio:  constants.ColdStartDurationRatio,
		CompletionRate: constants.ColdStartCompletionRate,
	}
}

// Patterns returns every learned pattern row for the user.
func (l *Learner) Patterns(userID string) ([]models.UserPattern, error) {
	return l.store.GetUserPatterns(userID)
}

// ObserveCompletion records a finished task. The duration ratio is skipped
// when the estimate was zero; the completion signal always counts.
func (l *Learner) ObserveCompletion(ctx context.Context, ev models.CompletionEvent) {
	energy := ev.ActualEnergy
	if !energy.Valid() {
		energy = ev.Scheduled.Energy
	}
	obs := observation{
		userID:    ev.Scheduled.UserID,
		energy:    energy,
		hourOfDay: l.hourFor(ev.Scheduled),
		completed: true,
	}
	if ev.Scheduled.EstimatedMin > 0 && ev.ActualMin > 0 {
		obs.ratio = float64(ev.ActualMin) / float64(ev.Scheduled.EstimatedMin)
		obs.hasRatio = true
	}
	l.enqueue(obs)
}

// ObserveSkip records an assignment that ended its scheduled date unfinished.
// Only the completion rate moves; duration statistics are untouched.
func (l *Learner) ObserveSkip(ctx context.Context, task models.ScheduledTask) {
	l.enqueue(observation{
		userID:    task.UserID,
		energy:    task.Energy,
		hourOfDay: l.hourFor(task),
		completed: false,
	})
}

// hourFor resolves the hour-of-day key from the assignment's block start,
// falling back to the task's creation hour if the block is gone.
func (l *Learner) hourFor(task models.ScheduledTask) int {
	block, err := l.store.GetTimeBlock(task.BlockID)
	if err == nil {
		if min, perr := models.ParseClock(block.Start); perr == nil {
			return min / 60
		}
	}
	if task.CreatedAt != "" {
		if t, perr := time.Parse(time.RFC3339, task.CreatedAt); perr == nil {
			return t.Hour()
		}
	}
	return 0
}

func (l *Learner) enqueue(obs observation) {
	select {
	case l.queue <- obs:
	default:
		logger.Warn("pattern queue full, dropping observation", "user", obs.userID)
	}
}

// Close stops the worker after the queued observations are applied.
func (l *Learner) Close() {
	close(l.queue)
	<-l.done
}

func (l *Learner) run() {
	defer close(l.done)
	for obs := range l.queue {
		l.applyWithRetry(obs)
	}
}

func (l *Learner) applyWithRetry(obs observation) {
	var err error
	for attempt := 0; attempt <= constants.LearnerMaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(constants.LearnerRetryDelay)
		}
		if err = l.apply(obs); err == nil {
			return
		}
	}
	logger.Error("pattern update dropped after retries",
		"user", obs.userID, "energy", obs.energy, "hour", obs.hourOfDay, "err", err)
}

// apply folds one observation into the stored pattern. Read-modify-write is
// safe because the single worker goroutine is the only writer.
func (l *Learner) apply(obs observation) error {
	p := l.PatternFor(obs.userID, obs.energy, obs.hourOfDay)

	if obs.hasRatio {
		if p.Observations == 0 {
			p.DurationRatio = obs.ratio
			p.RatioVariance = 0
		} else {
			diff := obs.ratio - p.DurationRatio
			p.DurationRatio += l.alpha * diff
			p.RatioVariance = (1 - l.alpha) * (p.RatioVariance + l.alpha*diff*diff)
		}
	}

	completed := 0.0
	if obs.completed {
		completed = 1.0
	}
	if p.Observations == 0 {
		p.CompletionRate = l.alpha*completed + (1-l.alpha)*constants.ColdStartCompletionRate
	} else {
		p.CompletionRate = l.alpha*completed + (1-l.alpha)*p.CompletionRate
	}

	p.Observations++
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return l.store.UpsertUserPattern(p)
}
