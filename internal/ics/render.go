package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"schedcal/internal/model"
	"schedcal/internal/schedule"
)

// DefaultCalendarName is used when the request does not name the calendar.
const DefaultCalendarName = "Class Schedule"

// Filename is the suggested attachment filename for a rendered document.
const Filename = "class-schedule.ics"

// MIMEType is the standard media type for the rendered document.
const MIMEType = "text/calendar; charset=utf-8"

// Render serializes materialized events into a single iCalendar document:
// one VCALENDAR carrying the calendar name and timezone identifier, one
// VEVENT per input event in input order.
//
// Output is deterministic for a given input and now: UIDs are derived from
// the calendar name, event position and anchor (SHA1-namespace UUIDs), and
// DTSTAMP is set from now rather than the wall clock. The renderer performs
// no I/O; the document is returned as a string and saving or downloading is
// the caller's concern.
func Render(req model.ExportRequest, items []schedule.Materialized, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//schedcal//schedule export//EN")

	name := req.CalendarName
	if name == "" {
		name = DefaultCalendarName
	}
	cal.SetXWRCalName(name)
	if req.Timezone != "" {
		cal.SetXWRTimezone(req.Timezone)
	}

	for i, it := range items {
		ev := cal.AddEvent(eventUID(name, i, it.Occurrence))
		ev.SetDtStampTime(now)
		ev.SetStartAt(it.Occurrence.Start)
		ev.SetEndAt(it.Occurrence.End)
		ev.SetSummary(it.Event.Title)
		if it.Event.Location != "" {
			ev.SetLocation(it.Event.Location)
		}
		if desc := it.Event.Description(); desc != "" {
			ev.SetDescription(desc)
		}
		if rr := schedule.RRule(it.Policy); rr != "" {
			ev.AddRrule(rr)
		}
	}

	// RFC 5545 requires CRLF line terminators; the library default follows
	// the build platform, so pin it explicitly to keep output deterministic.
	return cal.Serialize(ical.WithNewLineWindows)
}

// eventUID derives a stable UID for one event component. Identical input and
// "now" must yield a byte-identical document, so the UID is a SHA1-namespace
// UUID over the calendar name, the event's position and its anchor instant.
func eventUID(calendarName string, index int, occ model.ResolvedOccurrence) string {
	seed := fmt.Sprintf("schedcal://%s/%d/%s",
		calendarName, index, occ.Start.UTC().Format("20060102T150405Z"))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String() + "@schedcal"
}
