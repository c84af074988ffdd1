// Package tasksupply is the narrow client for the external task store. The
// planner never owns tasks; it reads eligible candidates and reports status
// transitions back.
package tasksupply

import (
	"context"

	"github.com/workdeck/planner/internal/models"
)

// Task is the read view over an external task exposed to the allocator.
type Task struct {
	ID           string             `json:"task_id"`
	EstimatedMin int                `json:"estimated_minutes"`
	Priority     models.Priority    `json:"priority"`
	DueDate      string             `json:"due_date,omitempty"` // YYYY-MM-DD
	Energy       models.EnergyLevel `json:"required_energy_level"`
	Context      string             `json:"context_tag,omitempty"`
}

// Supply is the consumed interface to the task store. All calls carry a
// context with a bounded deadline; the allocator treats a deadline overrun
// as "no more candidates", not as a failure.
type Supply interface {
	ListEligible(ctx context.Context, userID, date string) ([]Task, error)
	MarkInProgress(ctx context.Context, taskID string) error
	MarkDone(ctx context.Context, taskID string, actualMin int) error
}
