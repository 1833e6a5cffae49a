package model

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleEvent is a single extracted schedule entry as delivered by the
// upstream image-analysis collaborator. Field names mirror the extractor's
// JSON output, so a raw extraction response can be unmarshaled directly.
//
// DayOfWeek is required even for one-time events: when a one-time event has
// no explicit Date, the weekday is used as a fallback anchor.
type ScheduleEvent struct {
	Title     string `json:"title"`
	DayOfWeek string `json:"dayOfWeek"`

	// StartTime / EndTime are 24-hour wall-clock strings ("HH:MM").
	// EndTime is not guaranteed to be after StartTime; the input is
	// trusted as-is and both are applied to the same calendar date.
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	Location   string `json:"location,omitempty"`
	Instructor string `json:"instructor,omitempty"`
	CourseCode string `json:"courseCode,omitempty"`

	// IsOneTime marks a single occurrence (e.g. a final exam) instead of a
	// weekly-recurring class.
	IsOneTime bool `json:"isOneTime,omitempty"`

	// Date is an ISO calendar date ("YYYY-MM-DD"), meaningful only when
	// IsOneTime is set. It may be absent even on a one-time event, in which
	// case DayOfWeek anchors the occurrence.
	Date string `json:"date,omitempty"`
}

// Description joins the event's optional detail lines in fixed order
// ("Course: ...", then "Instructor: ...") with newlines. It returns ""
// when neither detail is present, in which case renderers omit the
// description entirely. Both renderers use this single builder.
func (e ScheduleEvent) Description() string {
	var parts []string
	if e.CourseCode != "" {
		parts = append(parts, "Course: "+e.CourseCode)
	}
	if e.Instructor != "" {
		parts = append(parts, "Instructor: "+e.Instructor)
	}
	return strings.Join(parts, "\n")
}

// ParseWeekday maps the extractor's weekday name onto time.Weekday
// (Sunday=0 .. Saturday=6, the conventional calendar offset mapping).
func ParseWeekday(name string) (time.Weekday, error) {
	switch name {
	case "Sunday":
		return time.Sunday, nil
	case "Monday":
		return time.Monday, nil
	case "Tuesday":
		return time.Tuesday, nil
	case "Wednesday":
		return time.Wednesday, nil
	case "Thursday":
		return time.Thursday, nil
	case "Friday":
		return time.Friday, nil
	case "Saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// ResolvedOccurrence is one concrete instance of an event: absolute start and
// end date-times anchored to a real calendar date. Start and End always share
// the same calendar date; End is derived independently from Start.
type ResolvedOccurrence struct {
	Start time.Time
	End   time.Time
}

// RecurrenceKind distinguishes a single occurrence from a weekly repeat.
type RecurrenceKind int

const (
	// RecurrenceNone is a single, non-repeating occurrence.
	RecurrenceNone RecurrenceKind = iota
	// RecurrenceWeeklyUntil repeats weekly on a fixed weekday up to and
	// including an end date.
	RecurrenceWeeklyUntil
)

// RecurrencePolicy describes how an event repeats. For RecurrenceNone the
// Until and Weekday fields are meaningless.
type RecurrencePolicy struct {
	Kind    RecurrenceKind
	Until   time.Time
	Weekday time.Weekday
}

// DefaultRepeatWeeks is the recurrence horizon applied when a request
// specifies neither RepeatWeeks nor SemesterEndDate.
const DefaultRepeatWeeks = 16

// ExportRequest is the configuration surface shared by the ICS renderer and
// the remote synchronizer. RepeatWeeks and SemesterEndDate are two ways of
// expressing the recurrence horizon; an explicit end date wins when both are
// set. One horizon applies to every recurring event in the request.
type ExportRequest struct {
	Events       []ScheduleEvent
	CalendarName string

	// Timezone is the IANA identifier all wall-clock times are interpreted
	// in. Required; there is no ambient-environment fallback.
	Timezone string

	// RepeatWeeks is the recurrence horizon in weeks from "now".
	// Zero means DefaultRepeatWeeks.
	RepeatWeeks int

	// SemesterEndDate, when non-zero, overrides RepeatWeeks as the
	// recurrence horizon.
	SemesterEndDate time.Time
}
