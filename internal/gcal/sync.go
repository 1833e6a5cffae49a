package gcal

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/schedule"
)

// DefaultCalendarName is used when the request does not name the calendar.
const DefaultCalendarName = "My Schedule"

// SyncResult identifies the calendar created by a successful sync.
type SyncResult struct {
	CalendarID  string `json:"calendarId"`
	CalendarURL string `json:"calendarUrl"`
}

// Synchronizer replays materialized events against the Google Calendar API.
// The zero-value-equivalent NewSynchronizer() talks to the real API; tests
// pass extra client options (endpoint override, custom HTTP client).
type Synchronizer struct {
	opts []option.ClientOption
}

// NewSynchronizer creates a Synchronizer. Any given options are applied to
// the underlying API client after the per-call credential.
func NewSynchronizer(opts ...option.ClientOption) *Synchronizer {
	return &Synchronizer{opts: opts}
}

// Sync creates one remote calendar named per the request and then inserts
// one event per materialized item, sequentially and in input order.
//
// accessToken is an opaque bearer credential; acquiring it is the caller's
// concern. Calls are never issued concurrently and a failing event insert
// aborts the batch immediately: no retry, no rollback of events already
// created server-side. Insufficient-scope responses surface as
// ErrInsufficientScope; any other per-event failure as *EventCreationError.
func (s *Synchronizer) Sync(ctx context.Context, accessToken string, req model.ExportRequest, items []schedule.Materialized) (*SyncResult, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, s.opts...)

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar client: %w", err)
	}

	name := req.CalendarName
	if name == "" {
		name = DefaultCalendarName
	}

	created, err := svc.Calendars.Insert(&calendar.Calendar{
		Summary:  name,
		TimeZone: req.Timezone,
	}).Context(ctx).Do()
	if err != nil {
		if isScopeError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientScope, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCalendarCreationFailed, err)
	}
	if created.Id == "" {
		return nil, ErrCalendarCreationFailed
	}

	appLog.Info("remote calendar created", "calendar_id", created.Id, "name", name, "event_count", len(items))

	for i, it := range items {
		gev := buildEvent(it, req.Timezone)
		if _, err := svc.Events.Insert(created.Id, gev).Context(ctx).Do(); err != nil {
			if isScopeError(err) {
				return nil, fmt.Errorf("%w: %v", ErrInsufficientScope, err)
			}
			appLog.Error("remote event creation failed, aborting batch", err,
				"calendar_id", created.Id, "index", i, "title", it.Event.Title)
			return nil, &EventCreationError{Index: i, Title: it.Event.Title, Err: err}
		}
		appLog.Debug("remote event created", "calendar_id", created.Id, "index", i, "title", it.Event.Title)
	}

	return &SyncResult{
		CalendarID:  created.Id,
		CalendarURL: calendarURL(created.Id),
	}, nil
}

// buildEvent translates one materialized item into the API's event shape.
// Recurring items carry the shared RRULE rendering prefixed per the Google
// recurrence grammar; one-time items carry no recurrence attribute.
func buildEvent(it schedule.Materialized, timezone string) *calendar.Event {
	gev := &calendar.Event{
		Summary:     it.Event.Title,
		Location:    it.Event.Location,
		Description: it.Event.Description(),
		Start: &calendar.EventDateTime{
			DateTime: it.Occurrence.Start.Format(time.RFC3339),
			TimeZone: timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: it.Occurrence.End.Format(time.RFC3339),
			TimeZone: timezone,
		},
	}
	if rr := schedule.RRule(it.Policy); rr != "" {
		gev.Recurrence = []string{"RRULE:" + rr}
	}
	return gev
}

// calendarURL derives the user-shareable web URL for a created calendar.
func calendarURL(id string) string {
	return "https://calendar.google.com/calendar/r?cid=" + url.QueryEscape(id)
}
