package models

// ScheduleBlock is one block-instance in a daily schedule view together with
// its assignments and utilization figures.
type ScheduleBlock struct {
	Block          TimeBlock       `json:"block"`
	Tasks          []ScheduledTask `json:"scheduled_tasks"`
	CapacityMin    int             `json:"capacity_minutes"`
	PlannedMin     int             `json:"planned_minutes"`
	UtilizationPct int             `json:"utilization_percent"`
	Overcommitted  bool            `json:"overcommitted"`
}

// DailySchedule is the merged read view for one (user, date): recurring
// blocks resolved against the date plus persisted assignments, including
// manual edits made after the last allocator run.
type DailySchedule struct {
	Date             string          `json:"date"`
	Blocks           []ScheduleBlock `json:"blocks"`
	TotalCapacityMin int             `json:"total_capacity_minutes"`
	TotalPlannedMin  int             `json:"total_planned_minutes"`
	UtilizationPct   int             `json:"utilization_percent"`
}

// DeferredTask records why the allocator could not place a task.
type DeferredTask struct {
	TaskID string      `json:"task_id"`
	Reason DeferReason `json:"reason"`
}

// AllocationResult is the outcome of one allocation run. Partial marks runs
// where the task supply timed out and only the tasks fetched before the
// deadline were considered.
type AllocationResult struct {
	Date     string          `json:"date"`
	Assigned []ScheduledTask `json:"assigned"`
	Deferred []DeferredTask  `json:"deferred"`
	Partial  bool            `json:"partial"`
}

// TaskSuggestion is the advisory pick of the recommendation engine.
type TaskSuggestion struct {
	TaskID  string  `json:"task_id"`
	BlockID string  `json:"block_id"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason,omitempty"`
}
