package gcal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	// ErrCalendarCreationFailed means the remote service did not return a
	// usable calendar identifier, so there is nothing to insert events into.
	ErrCalendarCreationFailed = errors.New("remote calendar creation failed")

	// ErrInsufficientScope means the supplied credential lacks Google
	// Calendar permission. This is user-actionable (re-grant calendar
	// access), unlike a transient remote failure, so it is kept distinct.
	ErrInsufficientScope = errors.New("access token lacks Google Calendar permission")
)

// EventCreationError reports the first remote event insert that failed.
// Events before Index were already created server-side and are not rolled
// back; events after Index were never attempted.
type EventCreationError struct {
	Index int
	Title string
	Err   error
}

func (e *EventCreationError) Error() string {
	return fmt.Sprintf("create event %d (%q): %v", e.Index, e.Title, e.Err)
}

func (e *EventCreationError) Unwrap() error {
	return e.Err
}

// isScopeError reports whether err is a Google API 403 caused by missing
// calendar scope, as opposed to any other forbidden/failed call.
func isScopeError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range gerr.Errors {
		if item.Reason == "insufficientPermissions" {
			return true
		}
	}
	return strings.Contains(gerr.Message, "insufficient authentication scopes")
}
