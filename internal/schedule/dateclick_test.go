package schedule

import (
	"testing"
	"time"
)

func TestRoundToNearestHour(t *testing.T) {
	tests := []struct {
		hour, min int
		want      string
	}{
		{14, 23, "14:00"},
		{9, 45, "10:00"},
		{10, 30, "11:00"},
		{10, 29, "10:00"},
		{0, 0, "00:00"},
		{23, 30, "00:00"}, // display wraps; the date is not advanced
		{23, 29, "23:00"},
	}

	for _, tt := range tests {
		now := time.Date(2025, 10, 20, tt.hour, tt.min, 0, 0, time.UTC)
		if got := RoundToNearestHour(now); got != tt.want {
			t.Errorf("RoundToNearestHour(%02d:%02d) = %s, want %s", tt.hour, tt.min, got, tt.want)
		}
	}
}

func TestCalculateEndTime(t *testing.T) {
	tests := []struct {
		start, want string
	}{
		{"10:00", "11:00"},
		{"22:30", "23:30"},
		{"23:00", "00:00"},
		{"23:30", "00:30"},
		{"00:00", "01:00"},
	}

	for _, tt := range tests {
		if got := CalculateEndTime(tt.start); got != tt.want {
			t.Errorf("CalculateEndTime(%s) = %s, want %s", tt.start, got, tt.want)
		}
	}
}

func TestQuickSlot(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2025, 10, 20, 14, 23, 0, 0, time.UTC)
	}

	slot := QuickSlot("2025-10-20", clock)
	if slot.Date != "2025-10-20" {
		t.Errorf("date = %s", slot.Date)
	}
	if slot.StartTime != "14:00" || slot.EndTime != "15:00" {
		t.Errorf("slot = %s-%s, want 14:00-15:00", slot.StartTime, slot.EndTime)
	}
}

func TestQuickSlotLateNight(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2025, 10, 20, 23, 30, 0, 0, time.UTC)
	}

	slot := QuickSlot("2025-10-20", clock)
	if slot.StartTime != "00:00" || slot.EndTime != "01:00" {
		t.Errorf("slot = %s-%s, want 00:00-01:00", slot.StartTime, slot.EndTime)
	}
}
