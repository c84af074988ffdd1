package models

import "time"

// TemplateBlock is one time-block specification inside a day template. It
// carries no date; the applier resolves recurrence when expanding.
type TemplateBlock struct {
	Name      string        `json:"name"`
	Start     string        `json:"start"` // HH:MM
	End       string        `json:"end"`   // HH:MM
	DayOfWeek *time.Weekday `json:"day_of_week,omitempty"`
	Workdays  bool          `json:"workdays"`
	Energy    EnergyLevel   `json:"energy_level"`
	IsBreak   bool          `json:"is_break"`
}

// DayTemplate is a named, reusable list of block specifications. Once a
// template has been applied it is immutable; edits create a new version row.
type DayTemplate struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	OrgID        string          `json:"org_id"`
	Name         string          `json:"name"`
	Version      int             `json:"version"`
	Blocks       []TemplateBlock `json:"blocks"`
	AppliedCount int             `json:"applied_count"`
	CreatedAt    string          `json:"created_at,omitempty"`
}

// Applied reports whether the template has apply history and is therefore
// frozen.
func (t DayTemplate) Applied() bool {
	return t.AppliedCount > 0
}

// Expand materializes the template's specifications into concrete TimeBlocks
// for the given user. IDs are left empty for the caller to assign.
func (t DayTemplate) Expand(userID, orgID string) []TimeBlock {
	blocks := make([]TimeBlock, 0, len(t.Blocks))
	for _, spec := range t.Blocks {
		blocks = append(blocks, TimeBlock{
			UserID:    userID,
			OrgID:     orgID,
			Name:      spec.Name,
			Start:     spec.Start,
			End:       spec.End,
			DayOfWeek: spec.DayOfWeek,
			Workdays:  spec.Workdays,
			Energy:    spec.Energy,
			IsBreak:   spec.IsBreak,
			IsActive:  true,
		})
	}
	return blocks
}
