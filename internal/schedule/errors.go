package schedule

import "errors"

// Validation errors. Every error returned by ValidateRequest or
// MaterializeRequest wraps one of these, so callers can branch with
// errors.Is and render a specific message.
var (
	// ErrInvalidDateFormat marks a date field that is not a valid
	// "YYYY-MM-DD" calendar date.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidTimeFormat marks a start/end time that is not a valid
	// 24-hour "HH:MM" wall-clock time.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrMissingAnchor marks a one-time event that has neither an explicit
	// date nor a usable day of week to anchor its occurrence.
	ErrMissingAnchor = errors.New("one-time event has no date and no day of week")
)
