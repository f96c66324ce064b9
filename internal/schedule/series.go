package schedule

import "github.com/rowanvale/morrow/internal/model"

// ActionKind names the persistence operation a resolved mutation requires.
type ActionKind string

const (
	ActionUpdateOne    ActionKind = "update_one"
	ActionDeleteOne    ActionKind = "delete_one"
	ActionUpdateSeries ActionKind = "update_series"
	ActionDeleteSeries ActionKind = "delete_series"
)

// Action describes which stored records a mutation touches. ID is set for the
// single-record kinds, SeriesID for the series kinds. Fields carries the new
// values for updates; series updates never touch per-instance dates.
type Action struct {
	Kind     ActionKind
	ID       int64
	SeriesID string
	Fields   model.EventForm
}

// IsRecurring reports whether an event belongs to a series: a non-none repeat
// type with a positive interval.
func IsRecurring(e model.Event) bool {
	return e.Repeat.Type != model.RepeatNone && e.Repeat.Interval > 0
}

// ResolveEdit decides how an edit to target applies. With singleOnly the one
// record is updated and detached from its series (repeat reset to none); the
// other instances keep their rule. Otherwise every record sharing the series
// id receives the new shared fields while each keeps its own date.
//
// Non-recurring targets resolve to a plain single-record update; callers
// normally bypass the resolver for those.
func ResolveEdit(target model.Event, fields model.EventForm, singleOnly bool) Action {
	if !IsRecurring(target) {
		return Action{Kind: ActionUpdateOne, ID: target.ID, Fields: fields}
	}

	if singleOnly {
		detached := fields
		detached.Repeat = model.None()
		return Action{Kind: ActionUpdateOne, ID: target.ID, Fields: detached}
	}

	return Action{Kind: ActionUpdateSeries, SeriesID: target.SeriesID, Fields: fields}
}

// ResolveDelete mirrors ResolveEdit: one record, or the whole series.
func ResolveDelete(target model.Event, singleOnly bool) Action {
	if !IsRecurring(target) || singleOnly {
		return Action{Kind: ActionDeleteOne, ID: target.ID}
	}
	return Action{Kind: ActionDeleteSeries, SeriesID: target.SeriesID}
}
