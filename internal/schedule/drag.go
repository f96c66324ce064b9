package schedule

import (
	"strings"

	"github.com/rowanvale/morrow/internal/model"
	"github.com/rowanvale/morrow/internal/overlap"
)

// RelocateOutcome is the decision for a drag-initiated date change.
// Exactly one of the three shapes applies: NoOp (nothing to persist),
// Overlaps non-empty (caller must re-prompt; Event holds the candidate so an
// explicit user override can still persist it), or Event alone (persist it).
type RelocateOutcome struct {
	Event    *model.Event
	Overlaps []model.Event
	NoOp     bool
}

// Relocate decides the result of dropping dragged onto newDate. Only the date
// changes; times are preserved. A recurring instance always detaches from its
// series and becomes standalone, regardless of the overlap outcome. Relocate
// is pure; persisting the returned event is the caller's job.
func Relocate(dragged *model.Event, newDate string, existing []model.Event) RelocateOutcome {
	if dragged == nil || strings.TrimSpace(newDate) == "" {
		return RelocateOutcome{NoOp: true}
	}

	updated := *dragged
	updated.Date = newDate

	if dragged.Repeat.Type != model.RepeatNone {
		updated.Repeat = model.None()
		updated.SeriesID = ""
	}

	if overlaps := overlap.FindOverlapping(updated, existing); len(overlaps) > 0 {
		return RelocateOutcome{Event: &updated, Overlaps: overlaps}
	}

	return RelocateOutcome{Event: &updated}
}
