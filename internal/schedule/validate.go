package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"schedcal/internal/model"
)

// ValidateRequest checks every event in the request before any resolution or
// rendering happens. Validation is all-or-nothing: the first malformed event
// fails the whole request and no partial output is ever produced.
//
// Only the temporal fields are validated. Descriptive fields (location,
// instructor, courseCode) pass through untouched, whatever they contain.
func ValidateRequest(req model.ExportRequest) error {
	for i, ev := range req.Events {
		if err := validateEvent(ev); err != nil {
			return fmt.Errorf("event %d (%q): %w", i, ev.Title, err)
		}
	}
	return nil
}

func validateEvent(ev model.ScheduleEvent) error {
	if _, _, err := parseClock(ev.StartTime); err != nil {
		return err
	}
	if _, _, err := parseClock(ev.EndTime); err != nil {
		return err
	}
	if ev.Date != "" {
		if _, err := parseDate(ev.Date); err != nil {
			return err
		}
	}

	if ev.IsOneTime && ev.Date == "" && ev.DayOfWeek == "" {
		return ErrMissingAnchor
	}

	// The weekday anchors the occurrence for every event except a dated
	// one-time event. An unknown weekday name leaves such an event with
	// nothing to anchor on.
	if !(ev.IsOneTime && ev.Date != "") {
		if _, err := model.ParseWeekday(ev.DayOfWeek); err != nil {
			return fmt.Errorf("%w: %v", ErrMissingAnchor, err)
		}
	}

	return nil
}

// parseClock parses a 24-hour "HH:MM" wall-clock string. Both components
// must be numeric and within wall-clock range.
func parseClock(s string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(s, ":")
	if !ok || hs == "" || ms == "" {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	hour, herr := strconv.Atoi(hs)
	minute, merr := strconv.Atoi(ms)
	if herr != nil || merr != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return hour, minute, nil
}

// parseDate parses an ISO "YYYY-MM-DD" calendar date. time.Parse rejects
// impossible dates (month 13, day 40), not just malformed strings.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}
