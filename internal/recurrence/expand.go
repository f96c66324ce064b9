package recurrence

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rowanvale/morrow/internal/model"
)

const dateLayout = "2006-01-02"

// Expansion limits for rules without an end date. The horizon keeps open-ended
// rules from generating instances more than two years past the anchor; the
// iteration ceiling is a backstop against pathological rules.
const (
	defaultHorizonYears = 2
	maxIterations       = 10000
)

// Expand generates the concrete event instances for a recurring rule: one
// independent event per occurrence date, starting at anchor and stepping by
// rule.Interval units of rule.Type. All instances carry the template's fields
// and the rule itself, plus a freshly generated shared series id. Occurrence
// dates that do not exist in the target month or year (Feb 31, Feb 29 outside
// leap years) are skipped; stepping continues from the anchor's day-of-month.
//
// The rule's end date is inclusive. Expand never checks for overlaps.
func Expand(rule model.RepeatRule, anchor string, form model.EventForm) ([]model.Event, error) {
	if rule.Type == model.RepeatNone {
		return nil, fmt.Errorf("cannot expand a non-repeating rule")
	}
	if rule.Interval < 1 {
		return nil, fmt.Errorf("invalid interval %d for %s rule", rule.Interval, rule.Type)
	}

	start, err := time.Parse(dateLayout, anchor)
	if err != nil {
		return nil, fmt.Errorf("parse anchor date: %w", err)
	}

	until := start.AddDate(defaultHorizonYears, 0, 0)
	if rule.EndDate != "" {
		until, err = time.Parse(dateLayout, rule.EndDate)
		if err != nil {
			return nil, fmt.Errorf("parse end date: %w", err)
		}
	}

	seriesID := uuid.NewString()
	var events []model.Event

	iter := newIterator(rule, start)
	for range maxIterations {
		date, ok := iter.next()
		if !ok || date.After(until) {
			break
		}
		events = append(events, instance(form, rule, seriesID, date))
	}

	return events, nil
}

func instance(form model.EventForm, rule model.RepeatRule, seriesID string, date time.Time) model.Event {
	return model.Event{
		SeriesID:         seriesID,
		Title:            form.Title,
		Description:      form.Description,
		Location:         form.Location,
		Category:         form.Category,
		Date:             date.Format(dateLayout),
		StartTime:        form.StartTime,
		EndTime:          form.EndTime,
		Repeat:           rule,
		NotificationTime: form.NotificationTime,
	}
}

type iterator struct {
	rule    model.RepeatRule
	anchor  time.Time
	step    int // completed steps from the anchor, in interval units
	started bool
}

func newIterator(rule model.RepeatRule, anchor time.Time) *iterator {
	return &iterator{rule: rule, anchor: anchor}
}

// next returns the next occurrence date. The anchor itself is always the
// first occurrence. Monthly and yearly rules skip steps whose target month
// lacks the anchor's day-of-month; the skipped step still advances the count
// so later occurrences stay aligned to the original cadence.
func (it *iterator) next() (time.Time, bool) {
	if !it.started {
		it.started = true
		return it.anchor, true
	}

	switch it.rule.Type {
	case model.RepeatDaily:
		it.step++
		return it.anchor.AddDate(0, 0, it.step*it.rule.Interval), true

	case model.RepeatWeekly:
		it.step++
		return it.anchor.AddDate(0, 0, 7*it.step*it.rule.Interval), true

	case model.RepeatMonthly:
		for range maxIterations {
			it.step++
			if date, ok := it.monthTarget(); ok {
				return date, true
			}
		}
		return time.Time{}, false

	case model.RepeatYearly:
		for range maxIterations {
			it.step++
			if date, ok := it.yearTarget(); ok {
				return date, true
			}
		}
		return time.Time{}, false
	}

	return time.Time{}, false
}

// monthTarget computes the anchor's day-of-month in the month it.step
// intervals ahead. Month arithmetic is done on a month index rather than
// AddDate, which would normalize Feb 31 into early March instead of
// reporting it as invalid.
func (it *iterator) monthTarget() (time.Time, bool) {
	day := it.anchor.Day()
	months := int(it.anchor.Month()) - 1 + it.step*it.rule.Interval
	year := it.anchor.Year() + months/12
	month := time.Month(months%12 + 1)

	if day > daysInMonth(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func (it *iterator) yearTarget() (time.Time, bool) {
	year := it.anchor.Year() + it.step*it.rule.Interval
	month := it.anchor.Month()
	day := it.anchor.Day()

	if day > daysInMonth(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
