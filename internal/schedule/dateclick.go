package schedule

import (
	"fmt"
	"time"
)

// Clock supplies the current time. Injected so date-click defaults are
// deterministic under test.
type Clock func() time.Time

// Slot is a pre-filled draft for a clicked calendar cell.
type Slot struct {
	Date      string
	StartTime string
	EndTime   string
}

// RoundToNearestHour rounds a wall-clock time to the nearest "HH:00";
// 30 minutes rounds up. 23:30 and later wrap to "00:00" for display only —
// the clicked date is not advanced.
func RoundToNearestHour(now time.Time) string {
	h := now.Hour()
	if now.Minute() >= 30 {
		h++
	}
	if h >= 24 {
		h = 0
	}
	return fmt.Sprintf("%02d:00", h)
}

// CalculateEndTime returns start plus one hour, wrapping 24 to "00:00".
func CalculateEndTime(start string) string {
	var h, m int
	if _, err := fmt.Sscanf(start, "%d:%d", &h, &m); err != nil {
		return start
	}
	h++
	if h >= 24 {
		h = 0
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// QuickSlot fills the creation form for a clicked date: start at the current
// time rounded to the hour, end one hour later.
func QuickSlot(date string, clock Clock) Slot {
	start := RoundToNearestHour(clock())
	return Slot{
		Date:      date,
		StartTime: start,
		EndTime:   CalculateEndTime(start),
	}
}
