// Package apperr defines the error taxonomy shared by the planning engine.
//
// CapacityError from the design taxonomy is intentionally absent: capacity
// overruns are encoded as data (overcommitted flags, deferred tasks), never
// raised as errors.
package apperr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConflictError reports overlapping time blocks or a concurrent allocation
// conflict. BlockID/OtherID name the colliding blocks when known.
type ConflictError struct {
	BlockID   string
	OtherID   string
	TimeRange string // human-readable, e.g. "09:00-10:30"
	Days      []time.Weekday
}

func (e *ConflictError) Error() string {
	var days []string
	for _, d := range e.Days {
		days = append(days, d.String()[:3])
	}
	msg := fmt.Sprintf("block %s conflicts with block %s", e.BlockID, e.OtherID)
	if e.TimeRange != "" {
		msg += fmt.Sprintf(" over %s", e.TimeRange)
	}
	if len(days) > 0 {
		msg += fmt.Sprintf(" on %s", strings.Join(days, ","))
	}
	return msg
}

// NotFoundError reports an unknown block, template, or task reference.
type NotFoundError struct {
	Kind string // "block", "template", "task", "scheduled task"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ValidationError reports malformed input: bad time ranges, negative
// durations, unknown enum values.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DependencyTimeoutError reports that an external collaborator (the task
// supply) was unavailable or slow. Callers degrade gracefully rather than
// failing the whole operation.
type DependencyTimeoutError struct {
	Dependency string
	Timeout    time.Duration
	Err        error
}

func (e *DependencyTimeoutError) Error() string {
	return fmt.Sprintf("%s did not respond within %s: %v", e.Dependency, e.Timeout, e.Err)
}

func (e *DependencyTimeoutError) Unwrap() error { return e.Err }

// TemplateConflictError reports that applying a day template would overlap
// existing active blocks. Collisions lists every offending time range so the
// caller can present a precise rejection.
type TemplateConflictError struct {
	TemplateID string
	Collisions []ConflictError
}

func (e *TemplateConflictError) Error() string {
	ranges := make([]string, len(e.Collisions))
	for i, c := range e.Collisions {
		ranges[i] = c.Error()
	}
	return fmt.Sprintf("template %s cannot be applied: %s", e.TemplateID, strings.Join(ranges, "; "))
}

// IsConflict reports whether err is a block or template conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	var tce *TemplateConflictError
	return errors.As(err, &ce) || errors.As(err, &tce)
}

// IsNotFound reports whether err is a missing-reference error.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDependencyTimeout reports whether err is a dependency timeout.
func IsDependencyTimeout(err error) bool {
	var dte *DependencyTimeoutError
	return errors.As(err, &dte)
}
