// Package validation checks incoming block and template payloads before they
// reach storage. Overlap checking against persisted state lives in the
// registry; this package only validates shape.
package validation

import (
	"fmt"
	"time"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/constants"
	"github.com/workdeck/planner/internal/models"
)

// ValidateTimeBlock checks a block's time range, recurrence, and energy tag.
func ValidateTimeBlock(b models.TimeBlock) error {
	if b.Name == "" {
		return &apperr.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := validateRange(b.Start, b.End); err != nil {
		return err
	}
	if !b.Energy.Valid() {
		return &apperr.ValidationError{Field: "energy_level", Reason: fmt.Sprintf("unknown level %q", b.Energy)}
	}
	if b.DayOfWeek == nil && !b.Workdays {
		return &apperr.ValidationError{Field: "recurrence", Reason: "either day_of_week or workdays must be set"}
	}
	if b.DayOfWeek != nil {
		if *b.DayOfWeek < time.Sunday || *b.DayOfWeek > time.Saturday {
			return &apperr.ValidationError{Field: "day_of_week", Reason: "must be 0-6"}
		}
	}
	return nil
}

// ValidateTemplate checks every block specification in a template, including
// overlaps between the template's own blocks.
func ValidateTemplate(t models.DayTemplate) error {
	if t.Name == "" {
		return &apperr.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(t.Blocks) == 0 {
		return &apperr.ValidationError{Field: "blocks", Reason: "template has no blocks"}
	}
	expanded := t.Expand(t.UserID, t.OrgID)
	for i, b := range expanded {
		b.ID = fmt.Sprintf("spec-%d", i)
		if err := ValidateTimeBlock(b); err != nil {
			return err
		}
		expanded[i] = b
	}
	// Break blocks may sit inside work blocks, so only non-break specs are
	// checked against each other.
	for i := range expanded {
		if expanded[i].IsBreak {
			continue
		}
		for j := i + 1; j < len(expanded); j++ {
			if expanded[j].IsBreak {
				continue
			}
			if conflicts, days := expanded[i].ConflictsWith(expanded[j]); conflicts {
				return &apperr.ValidationError{
					Field: "blocks",
					Reason: fmt.Sprintf("%q and %q overlap on %s", t.Blocks[i].Name, t.Blocks[j].Name,
						days[0].String()),
				}
			}
		}
	}
	return nil
}

// ValidateDate parses and normalizes a YYYY-MM-DD date string.
func ValidateDate(s string) (time.Time, error) {
	d, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, &apperr.ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", s)}
	}
	return d, nil
}

// ValidateEstimate rejects non-positive task estimates.
func ValidateEstimate(minutes int) error {
	if minutes <= 0 {
		return &apperr.ValidationError{Field: "estimated_minutes", Reason: "must be positive"}
	}
	return nil
}

func validateRange(start, end string) error {
	s, err := models.ParseClock(start)
	if err != nil {
		return &apperr.ValidationError{Field: "start", Reason: fmt.Sprintf("%q is not HH:MM", start)}
	}
	e, err := models.ParseClock(end)
	if err != nil {
		return &apperr.ValidationError{Field: "end", Reason: fmt.Sprintf("%q is not HH:MM", end)}
	}
	if e <= s {
		return &apperr.ValidationError{Field: "end", Reason: "must be after start"}
	}
	return nil
}
