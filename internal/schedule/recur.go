package schedule

import (
	"time"

	"github.com/teambition/rrule-go"

	"schedcal/internal/model"
)

// Horizon computes the recurrence end date shared by every recurring event
// in a request. An explicit semester end date wins; otherwise the horizon is
// RepeatWeeks weeks from now (default model.DefaultRepeatWeeks).
func Horizon(req model.ExportRequest, now time.Time, loc *time.Location) time.Time {
	if !req.SemesterEndDate.IsZero() {
		return req.SemesterEndDate
	}
	weeks := req.RepeatWeeks
	if weeks <= 0 {
		weeks = model.DefaultRepeatWeeks
	}
	return now.In(loc).AddDate(0, 0, weeks*7)
}

// Plan derives the recurrence policy for one event. One-time events never
// recur; everything else repeats weekly on the event's weekday until the
// request horizon.
func Plan(ev model.ScheduleEvent, until time.Time) (model.RecurrencePolicy, error) {
	if ev.IsOneTime {
		return model.RecurrencePolicy{Kind: model.RecurrenceNone}, nil
	}
	wd, err := model.ParseWeekday(ev.DayOfWeek)
	if err != nil {
		return model.RecurrencePolicy{}, ErrMissingAnchor
	}
	return model.RecurrencePolicy{
		Kind:    model.RecurrenceWeeklyUntil,
		Until:   until,
		Weekday: wd,
	}, nil
}

// RRule renders a weekly policy as an RFC 5545 RRULE value
// ("FREQ=WEEKLY;UNTIL=...;BYDAY=..."), with UNTIL in compact UTC form.
// Both the ICS renderer and the remote synchronizer use this single
// translation, so the two output grammars cannot drift apart.
// Returns "" for RecurrenceNone.
func RRule(p model.RecurrencePolicy) string {
	if p.Kind != model.RecurrenceWeeklyUntil {
		return ""
	}
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Until:     p.Until.UTC(),
		Byweekday: []rrule.Weekday{rruleWeekday(p.Weekday)},
	}
	return opt.RRuleString()
}

func rruleWeekday(wd time.Weekday) rrule.Weekday {
	switch wd {
	case time.Sunday:
		return rrule.SU
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	}
	return rrule.MO
}
