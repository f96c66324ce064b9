package model

import "time"

// RepeatType identifies how often an event recurs.
type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

// RepeatRule describes an event's recurrence. Interval is the step in units
// of Type (every 2 weeks = weekly/2); it is 0 only when Type is RepeatNone.
// EndDate is an inclusive "YYYY-MM-DD" bound; empty means no end date, in
// which case expansion stops at a fixed horizon.
type RepeatRule struct {
	Type     RepeatType `json:"type"`
	Interval int        `json:"interval"`
	EndDate  string     `json:"end_date,omitempty"`
}

// None returns the rule for a standalone, non-repeating event.
func None() RepeatRule {
	return RepeatRule{Type: RepeatNone, Interval: 0}
}

// Event is one scheduled item. Dates are "YYYY-MM-DD" and times are "HH:MM"
// local wall-clock strings; the [StartTime, EndTime) interval is half-open
// and confined to Date. SeriesID ties together the instances produced by one
// recurrence expansion and is empty for standalone events.
type Event struct {
	ID               int64      `json:"id"`
	SeriesID         string     `json:"series_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Location         string     `json:"location"`
	Category         string     `json:"category"`
	Date             string     `json:"date"`
	StartTime        string     `json:"start_time"`
	EndTime          string     `json:"end_time"`
	Repeat           RepeatRule `json:"repeat"`
	NotificationTime int        `json:"notification_time"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// EventForm is a not-yet-saved event draft: everything the user supplies,
// without store-assigned identity.
type EventForm struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Location         string     `json:"location"`
	Category         string     `json:"category"`
	Date             string     `json:"date"`
	StartTime        string     `json:"start_time"`
	EndTime          string     `json:"end_time"`
	Repeat           RepeatRule `json:"repeat"`
	NotificationTime int        `json:"notification_time"`
}
