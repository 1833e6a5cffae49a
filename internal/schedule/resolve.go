package schedule

import (
	"time"

	"schedcal/internal/model"
)

// Resolve maps one event to its concrete occurrence, using the resolution
// precedence:
//
//  1. one-time event with an explicit date: that date is used verbatim,
//     with no weekday adjustment;
//  2. one-time event without a date: the next calendar occurrence of the
//     event's weekday strictly after now;
//  3. recurring event: same next-occurrence rule; the result is the first
//     instance of the weekly recurrence.
//
// "now" is an explicit parameter so resolution is reproducible in tests.
// The returned date-times are wall-clock values in loc; no timezone
// conversion happens here.
func Resolve(ev model.ScheduleEvent, now time.Time, loc *time.Location) (model.ResolvedOccurrence, error) {
	startHour, startMin, err := parseClock(ev.StartTime)
	if err != nil {
		return model.ResolvedOccurrence{}, err
	}
	endHour, endMin, err := parseClock(ev.EndTime)
	if err != nil {
		return model.ResolvedOccurrence{}, err
	}

	var anchor time.Time
	if ev.IsOneTime && ev.Date != "" {
		d, derr := parseDate(ev.Date)
		if derr != nil {
			return model.ResolvedOccurrence{}, derr
		}
		anchor = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	} else {
		wd, werr := model.ParseWeekday(ev.DayOfWeek)
		if werr != nil {
			return model.ResolvedOccurrence{}, ErrMissingAnchor
		}
		anchor = nextOccurrence(now.In(loc), wd)
	}

	// End is applied to the same calendar date as start, independently of
	// start. An end before start is passed through as given.
	return model.ResolvedOccurrence{
		Start: atTime(anchor, startHour, startMin, loc),
		End:   atTime(anchor, endHour, endMin, loc),
	}, nil
}

// nextOccurrence returns the next calendar date falling on target, strictly
// after now. When now already falls on target, the result rolls a full week
// forward; it never resolves to today or to a past date.
func nextOccurrence(now time.Time, target time.Weekday) time.Time {
	days := (int(target) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

// atTime pins hour and minute onto the anchor's calendar date, zeroing
// seconds and below.
func atTime(anchor time.Time, hour, minute int, loc *time.Location) time.Time {
	return time.Date(anchor.Year(), anchor.Month(), anchor.Day(), hour, minute, 0, 0, loc)
}
