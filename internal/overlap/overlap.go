package overlap

import (
	"strconv"
	"strings"

	"github.com/rowanvale/morrow/internal/model"
)

// FindOverlapping returns every event in existing that conflicts with
// candidate, in the order existing was given. Two events conflict when they
// share the same date and their [start, end) intervals intersect:
// candidate.start < other.end AND candidate.end > other.start. Back-to-back
// events (end == start) never conflict. A saved candidate is never compared
// against its own stored copy.
func FindOverlapping(candidate model.Event, existing []model.Event) []model.Event {
	var overlaps []model.Event

	cStart := minutes(candidate.StartTime)
	cEnd := minutes(candidate.EndTime)

	for _, other := range existing {
		if candidate.ID != 0 && other.ID == candidate.ID {
			continue
		}
		if other.Date != candidate.Date {
			continue
		}
		if cStart < minutes(other.EndTime) && cEnd > minutes(other.StartTime) {
			overlaps = append(overlaps, other)
		}
	}

	return overlaps
}

// minutes converts an "HH:MM" wall-clock string to minutes since midnight.
// Malformed input maps to 0; callers validate time shape at the form boundary.
func minutes(hhmm string) int {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return 0
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	mins, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return hours*60 + mins
}
