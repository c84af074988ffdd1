package models

import (
	"testing"
	"time"
)

func weekdayPtr(d time.Weekday) *time.Weekday { return &d }

func TestTimeBlock_AppliesTo(t *testing.T) {
	monday, _ := ParseDate("2026-08-31")
	saturday, _ := ParseDate("2026-09-05")

	workdays := TimeBlock{Workdays: true}
	if !workdays.AppliesTo(monday) {
		t.Error("workdays block should apply on Monday")
	}
	if workdays.AppliesTo(saturday) {
		t.Error("workdays block should not apply on Saturday")
	}

	satOnly := TimeBlock{DayOfWeek: weekdayPtr(time.Saturday)}
	if !satOnly.AppliesTo(saturday) {
		t.Error("Saturday block should apply on Saturday")
	}
	if satOnly.AppliesTo(monday) {
		t.Error("Saturday block should not apply on Monday")
	}
}

func TestTimeBlock_DurationMin(t *testing.T) {
	b := TimeBlock{Start: "09:00", End: "10:30"}
	if got := b.DurationMin(); got != 90 {
		t.Errorf("DurationMin() = %d, want 90", got)
	}
	inverted := TimeBlock{Start: "10:00", End: "09:00"}
	if got := inverted.DurationMin(); got != 0 {
		t.Errorf("inverted range DurationMin() = %d, want 0", got)
	}
}

func TestTimeBlock_ConflictsWith(t *testing.T) {
	tests := []struct {
		name string
		a, b TimeBlock
		want bool
	}{
		{
			name: "overlapping workday blocks",
			a:    TimeBlock{ID: "a", Start: "09:00", End: "11:00", Workdays: true},
			b:    TimeBlock{ID: "b", Start: "10:00", End: "12:00", Workdays: true},
			want: true,
		},
		{
			name: "adjacent blocks do not conflict",
			a:    TimeBlock{ID: "a", Start: "09:00", End: "10:00", Workdays: true},
			b:    TimeBlock{ID: "b", Start: "10:00", End: "11:00", Workdays: true},
			want: false,
		},
		{
			name: "overlap on disjoint weekdays",
			a:    TimeBlock{ID: "a", Start: "09:00", End: "11:00", DayOfWeek: weekdayPtr(time.Monday)},
			b:    TimeBlock{ID: "b", Start: "09:00", End: "11:00", DayOfWeek: weekdayPtr(time.Tuesday)},
			want: false,
		},
		{
			name: "workdays projects onto explicit weekday",
			a:    TimeBlock{ID: "a", Start: "09:00", End: "11:00", Workdays: true},
			b:    TimeBlock{ID: "b", Start: "10:00", End: "12:00", DayOfWeek: weekdayPtr(time.Wednesday)},
			want: true,
		},
		{
			name: "same id never conflicts",
			a:    TimeBlock{ID: "a", Start: "09:00", End: "11:00", Workdays: true},
			b:    TimeBlock{ID: "a", Start: "09:00", End: "11:00", Workdays: true},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, days := tt.a.ConflictsWith(tt.b)
			if got != tt.want {
				t.Errorf("ConflictsWith() = %v, want %v", got, tt.want)
			}
			if got && len(days) == 0 {
				t.Error("conflicting blocks should report the shared weekdays")
			}
		})
	}
}

func TestUserPattern_AdjustMinutes(t *testing.T) {
	p := UserPattern{DurationRatio: 1.5}
	if got := p.AdjustMinutes(60); got != 90 {
		t.Errorf("AdjustMinutes(60) = %d, want 90", got)
	}
	tiny := UserPattern{DurationRatio: 0.001}
	if got := tiny.AdjustMinutes(10); got != 1 {
		t.Errorf("AdjustMinutes floor = %d, want 1", got)
	}
}
