package models

import "testing"

func TestEnergyLevel_CanHost(t *testing.T) {
	tests := []struct {
		name     string
		block    EnergyLevel
		required EnergyLevel
		want     bool
	}{
		{"exact match", EnergyMedium, EnergyMedium, true},
		{"one level lower tolerated", EnergyMedium, EnergyHigh, true},
		{"two levels lower rejected", EnergyLow, EnergyHigh, false},
		{"low never hosts peak", EnergyLow, EnergyPeak, false},
		{"higher block hosts lower task", EnergyPeak, EnergyLow, true},
		{"unknown block level", EnergyLevel("frantic"), EnergyLow, false},
		{"unknown required level", EnergyHigh, EnergyLevel(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.block.CanHost(tt.required); got != tt.want {
				t.Errorf("CanHost(%s, %s) = %v, want %v", tt.block, tt.required, got, tt.want)
			}
		})
	}
}

func TestPriority_Weight(t *testing.T) {
	if PriorityUrgent.Weight() <= PriorityHigh.Weight() {
		t.Error("urgent should outweigh high")
	}
	if PriorityHigh.Weight() <= PriorityMedium.Weight() {
		t.Error("high should outweigh medium")
	}
	if PriorityMedium.Weight() <= PriorityLow.Weight() {
		t.Error("medium should outweigh low")
	}
	if Priority("unknown").Weight() != PriorityMedium.Weight() {
		t.Error("unknown priority should weigh as medium")
	}
}

func TestTaskStatus_Open(t *testing.T) {
	for status, want := range map[TaskStatus]bool{
		StatusPlanned:    true,
		StatusInProgress: true,
		StatusDone:       false,
		StatusSkipped:    false,
	} {
		if got := status.Open(); got != want {
			t.Errorf("%s.Open() = %v, want %v", status, got, want)
		}
	}
}
