package models

// ScheduledTask assigns an external task to a block-instance (block x date).
// EstimatedMin is copied from the task supply at assignment time and is
// immutable once work starts.
type ScheduledTask struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	OrgID        string      `json:"org_id"`
	TaskID       string      `json:"task_id"`
	BlockID      string      `json:"block_id"`
	Date         string      `json:"scheduled_date"` // YYYY-MM-DD
	EstimatedMin int         `json:"estimated_minutes"`
	Status       TaskStatus  `json:"status"`
	Context      string      `json:"context_tag,omitempty"`
	Priority     Priority    `json:"priority"`
	Energy       EnergyLevel `json:"energy_required"`
	DueDate      string      `json:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt    string      `json:"created_at,omitempty"`
	StartedAt    *string     `json:"started_at,omitempty"`
	CompletedAt  *string     `json:"completed_at,omitempty"`
	ActualMin    *int        `json:"actual_minutes,omitempty"`
}

// CompletionEvent is emitted when a task finishes; it feeds the pattern
// learner. ScheduledTask carries the assignment the actuals are compared
// against.
type CompletionEvent struct {
	TaskID       string        `json:"task_id"`
	Scheduled    ScheduledTask `json:"scheduled_task"`
	ActualMin    int           `json:"actual_minutes"`
	ActualEnergy EnergyLevel   `json:"actual_energy_level"`
	CompletedAt  string        `json:"completed_at"` // RFC3339
}
