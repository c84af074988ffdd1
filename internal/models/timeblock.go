package models

import "time"

// TimeBlock is a recurring capacity window owned by exactly one user. A block
// recurs either on a single weekday (DayOfWeek set) or on every workday
// Mon-Fri (Workdays set). Break blocks are excluded from allocation.
type TimeBlock struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	OrgID     string        `json:"org_id"`
	Name      string        `json:"name"`
	Start     string        `json:"start"` // HH:MM
	End       string        `json:"end"`   // HH:MM
	DayOfWeek *time.Weekday `json:"day_of_week,omitempty"`
	Workdays  bool          `json:"workdays"`
	Energy    EnergyLevel   `json:"energy_level"`
	IsBreak   bool          `json:"is_break"`
	IsActive  bool          `json:"is_active"`
	CreatedAt string        `json:"created_at,omitempty"` // RFC3339
}

// DurationMin returns the block's capacity in minutes. Returns 0 for
// malformed times, which validation rejects before persistence.
func (b TimeBlock) DurationMin() int {
	start, err := ParseClock(b.Start)
	if err != nil {
		return 0
	}
	end, err := ParseClock(b.End)
	if err != nil {
		return 0
	}
	if end <= start {
		return 0
	}
	return end - start
}

// AppliesTo reports whether the block recurs on the given calendar date.
func (b TimeBlock) AppliesTo(date time.Time) bool {
	wd := date.Weekday()
	if b.Workdays && wd >= time.Monday && wd <= time.Friday {
		return true
	}
	return b.DayOfWeek != nil && *b.DayOfWeek == wd
}

// OverlapsClock reports whether the [start,end) windows of two blocks
// intersect, ignoring recurrence.
func (b TimeBlock) OverlapsClock(other TimeBlock) bool {
	bs, err := ParseClock(b.Start)
	if err != nil {
		return false
	}
	be, err := ParseClock(b.End)
	if err != nil {
		return false
	}
	os, err := ParseClock(other.Start)
	if err != nil {
		return false
	}
	oe, err := ParseClock(other.End)
	if err != nil {
		return false
	}
	return bs < oe && os < be
}

// SharedWeekdays projects both blocks' recurrence forward and returns every
// weekday on which they would both apply.
func (b TimeBlock) SharedWeekdays(other TimeBlock) []time.Weekday {
	var shared []time.Weekday
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if b.recursOn(wd) && other.recursOn(wd) {
			shared = append(shared, wd)
		}
	}
	return shared
}

func (b TimeBlock) recursOn(wd time.Weekday) bool {
	if b.Workdays && wd >= time.Monday && wd <= time.Friday {
		return true
	}
	return b.DayOfWeek != nil && *b.DayOfWeek == wd
}

// ConflictsWith reports whether two blocks would ever occupy overlapping
// [start,end) windows on the same date, along with the weekdays on which
// that happens. A block never conflicts with itself.
func (b TimeBlock) ConflictsWith(other TimeBlock) (bool, []time.Weekday) {
	if b.ID != "" && b.ID == other.ID {
		return false, nil
	}
	if !b.OverlapsClock(other) {
		return false, nil
	}
	shared := b.SharedWeekdays(other)
	return len(shared) > 0, shared
}
