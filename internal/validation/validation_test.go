package validation

import (
	"testing"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
)

func validBlock() models.TimeBlock {
	return models.TimeBlock{
		Name:     "Deep Work",
		Start:    "09:00",
		End:      "11:00",
		Workdays: true,
		Energy:   models.EnergyHigh,
	}
}

func TestValidateTimeBlock(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.TimeBlock)
		wantErr bool
	}{
		{"valid block", func(b *models.TimeBlock) {}, false},
		{"empty name", func(b *models.TimeBlock) { b.Name = "" }, true},
		{"bad start", func(b *models.TimeBlock) { b.Start = "25:00" }, true},
		{"bad end", func(b *models.TimeBlock) { b.End = "12:70" }, true},
		{"end before start", func(b *models.TimeBlock) { b.Start = "11:00"; b.End = "09:00" }, true},
		{"zero duration", func(b *models.TimeBlock) { b.End = b.Start }, true},
		{"unknown energy", func(b *models.TimeBlock) { b.Energy = "frantic" }, true},
		{"no recurrence", func(b *models.TimeBlock) { b.Workdays = false }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBlock()
			tt.mutate(&b)
			err := ValidateTimeBlock(b)
			if tt.wantErr && !apperr.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTemplate_OverlapWithinTemplate(t *testing.T) {
	tpl := models.DayTemplate{
		Name: "Broken Day",
		Blocks: []models.TemplateBlock{
			{Name: "Morning", Start: "09:00", End: "12:00", Workdays: true, Energy: models.EnergyHigh},
			{Name: "Clash", Start: "11:00", End: "13:00", Workdays: true, Energy: models.EnergyMedium},
		},
	}
	if err := ValidateTemplate(tpl); !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError for overlapping specs, got %v", err)
	}
}

func TestValidateTemplate_BreakInsideWorkBlock(t *testing.T) {
	tpl := models.DayTemplate{
		Name: "Day With Lunch",
		Blocks: []models.TemplateBlock{
			{Name: "Work", Start: "09:00", End: "17:00", Workdays: true, Energy: models.EnergyMedium},
			{Name: "Lunch", Start: "12:00", End: "13:00", Workdays: true, Energy: models.EnergyLow, IsBreak: true},
		},
	}
	if err := ValidateTemplate(tpl); err != nil {
		t.Errorf("break block inside work block should be allowed, got %v", err)
	}
}

func TestValidateDate(t *testing.T) {
	if _, err := ValidateDate("2026-09-01"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"09/01/2026", "2026-13-01", "tomorrow", ""} {
		if _, err := ValidateDate(bad); !apperr.IsValidation(err) {
			t.Errorf("ValidateDate(%q) should fail with ValidationError, got %v", bad, err)
		}
	}
}
