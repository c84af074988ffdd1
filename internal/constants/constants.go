package constants

import "time"

const (
	AppName            = "planner"
	Version            = "v0.3.0"
	DefaultKeyringUser = "database-connection"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard wall-clock format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DefaultServerPort is the port the HTTP API listens on when unconfigured
	DefaultServerPort = "8093"

	// DefaultSmoothingAlpha weights the most recent ~20 observations as dominant
	// in the pattern learner's moving averages (alpha = 2/(N+1) with N=20, rounded).
	DefaultSmoothingAlpha = 0.1

	// Cold-start pattern defaults returned when a user has no observations yet
	ColdStartDurationRatio  = 1.0
	ColdStartCompletionRate = 0.8

	// DefaultTaskSupplyTimeout bounds calls to the external task store.
	// A timeout degrades allocation to a partial run, it never fails it.
	DefaultTaskSupplyTimeout = 3 * time.Second

	// DefaultScheduleCacheTTL bounds staleness of cached daily schedules
	DefaultScheduleCacheTTL = 5 * time.Minute

	// Learner retry policy for asynchronous pattern persistence
	LearnerMaxRetries = 3
	LearnerRetryDelay = 250 * time.Millisecond
	LearnerQueueSize  = 256
)
