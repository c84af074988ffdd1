package storage

import "github.com/workdeck/planner/internal/models"

// Provider is the persistence contract for the planning engine. Both the
// SQLite and PostgreSQL backends implement it; callers never see the driver.
// Missing rows surface as *apperr.NotFoundError.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Time blocks. Blocks are soft-deactivated, never deleted, because
	// historical scheduled tasks keep referencing them.
	AddTimeBlock(models.TimeBlock) error
	AddTimeBlocks([]models.TimeBlock) error // transactional all-or-nothing
	GetTimeBlock(id string) (models.TimeBlock, error)
	GetActiveTimeBlocks(userID string) ([]models.TimeBlock, error)
	UpdateTimeBlock(models.TimeBlock) error
	DeactivateTimeBlock(id string) error

	// Scheduled tasks
	SaveScheduledTask(models.ScheduledTask) error
	GetScheduledTask(id string) (models.ScheduledTask, error)
	GetScheduledTaskByTask(userID, taskID, date string) (models.ScheduledTask, error)
	GetScheduledTasksForDate(userID, date string) ([]models.ScheduledTask, error)
	DeletePlannedForDate(userID, date string) error
	UpdateScheduledTaskStatus(id string, status models.TaskStatus, at string, actualMin *int) error
	ReassignScheduledTask(id, blockID string) error

	// User patterns. Rows are upserted, never deleted.
	GetUserPattern(userID string, energy models.EnergyLevel, hourOfDay int) (models.UserPattern, error)
	GetUserPatterns(userID string) ([]models.UserPattern, error)
	UpsertUserPattern(models.UserPattern) error

	// Day templates
	AddDayTemplate(models.DayTemplate) error
	UpdateDayTemplate(models.DayTemplate) error
	GetDayTemplate(id string) (models.DayTemplate, error)
	GetDayTemplates(userID string) ([]models.DayTemplate, error)
	// ApplyDayTemplate creates all expanded blocks and bumps the template's
	// applied count in one transaction.
	ApplyDayTemplate(templateID string, blocks []models.TimeBlock) error

	// Allocation fingerprints for idempotent re-runs
	GetAllocationFingerprint(userID, date string) (string, error)
	SaveAllocationFingerprint(userID, date, hash string) error

	// Utils
	GetConfigPath() string
}
