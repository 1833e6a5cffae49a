package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"

	"schedcal/internal/model"
	"schedcal/internal/schedule"
)

// Wednesday, 2025-01-15 12:00 in New York.
func fixedNow(t *testing.T) (time.Time, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return time.Date(2025, time.January, 15, 12, 0, 0, 0, loc), loc
}

func materialize(t *testing.T, req model.ExportRequest, now time.Time) []schedule.Materialized {
	t.Helper()
	items, err := schedule.MaterializeRequest(req, now)
	require.NoError(t, err)
	return items
}

// A recurring class anchors on the next Monday with a weekly rule ending
// sixteen weeks out, still on a Monday.
func TestRenderRecurringClass(t *testing.T) {
	now, loc := fixedNow(t)
	req := model.ExportRequest{
		Timezone:    "America/New_York",
		RepeatWeeks: 16,
		Events: []model.ScheduleEvent{
			{Title: "CS 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "09:50"},
		},
	}

	doc := Render(req, materialize(t, req, now), now)

	assert.Contains(t, doc, "BEGIN:VCALENDAR")
	assert.Contains(t, doc, "X-WR-CALNAME:Class Schedule")
	assert.Contains(t, doc, "X-WR-TIMEZONE:America/New_York")
	assert.Contains(t, doc, "SUMMARY:CS 101")
	// 2025-01-20 09:00 New York is 14:00 UTC.
	assert.Contains(t, doc, "DTSTART:20250120T140000Z")
	assert.Contains(t, doc, "DTEND:20250120T145000Z")
	assert.Contains(t, doc, "FREQ=WEEKLY")
	assert.Contains(t, doc, "BYDAY=MO")

	// Re-expand the emitted rule: every instance on a Monday, the last one
	// sixteen weeks after the anchor.
	rr := extractRRule(t, doc)
	r, err := rrule.StrToRRule(rr)
	require.NoError(t, err)
	r.DTStart(time.Date(2025, time.January, 20, 9, 0, 0, 0, loc))

	all := r.All()
	require.Len(t, all, 16)
	for _, occ := range all {
		assert.Equal(t, time.Monday, occ.In(loc).Weekday())
	}
}

// Scenario: a dated one-time event is emitted exactly once, on its date,
// with no recurrence rule, regardless of the claimed weekday.
func TestRenderDatedOneTimeEvent(t *testing.T) {
	now, _ := fixedNow(t)
	req := model.ExportRequest{
		Timezone: "America/New_York",
		Events: []model.ScheduleEvent{
			{Title: "Final Exam", DayOfWeek: "Friday", StartTime: "14:00", EndTime: "16:00", IsOneTime: true, Date: "2025-12-12"},
		},
	}

	doc := Render(req, materialize(t, req, now), now)

	// 2025-12-12 14:00 New York is 19:00 UTC.
	assert.Contains(t, doc, "DTSTART:20251212T190000Z")
	assert.Contains(t, doc, "DTEND:20251212T210000Z")
	assert.NotContains(t, doc, "RRULE")
	assert.Equal(t, 1, strings.Count(doc, "BEGIN:VEVENT"))
}

// Identical input and identical "now" must yield byte-identical output.
func TestRenderIdempotent(t *testing.T) {
	now, _ := fixedNow(t)
	req := model.ExportRequest{
		Timezone:     "America/New_York",
		CalendarName: "Spring 2025",
		Events: []model.ScheduleEvent{
			{Title: "CS 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "09:50", CourseCode: "CS101", Instructor: "Dr. Liu"},
			{Title: "Final Exam", DayOfWeek: "Friday", StartTime: "14:00", EndTime: "16:00", IsOneTime: true, Date: "2025-12-12"},
		},
	}

	first := Render(req, materialize(t, req, now), now)
	second := Render(req, materialize(t, req, now), now)
	assert.Equal(t, first, second)
}

func TestRenderDescription(t *testing.T) {
	now, _ := fixedNow(t)

	t.Run("both details in fixed order", func(t *testing.T) {
		req := model.ExportRequest{
			Timezone: "UTC",
			Events: []model.ScheduleEvent{
				{Title: "CS 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "09:50", CourseCode: "CS101", Instructor: "Dr. Liu"},
			},
		}
		doc := Render(req, materialize(t, req, now), now)
		assert.Contains(t, doc, "Course: CS101")
		assert.Contains(t, doc, "Instructor: Dr. Liu")
		assert.Less(t, strings.Index(doc, "Course:"), strings.Index(doc, "Instructor:"))
	})

	t.Run("omitted when no details", func(t *testing.T) {
		req := model.ExportRequest{
			Timezone: "UTC",
			Events: []model.ScheduleEvent{
				{Title: "CS 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "09:50"},
			},
		}
		doc := Render(req, materialize(t, req, now), now)
		assert.NotContains(t, doc, "DESCRIPTION")
	})
}

// Events survive a parse by a standards-compliant reader: summary, location
// and the recurrence boundary all reconstruct.
func TestRenderRoundTrip(t *testing.T) {
	now, loc := fixedNow(t)
	req := model.ExportRequest{
		Timezone:    "America/New_York",
		RepeatWeeks: 16,
		Events: []model.ScheduleEvent{
			{Title: "CS 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "09:50", Location: "Room 204"},
		},
	}

	doc := Render(req, materialize(t, req, now), now)

	cal, err := ical.ParseCalendar(strings.NewReader(doc))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 1)
	ev := events[0]

	assert.Equal(t, "CS 101", ev.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Room 204", ev.GetProperty(ical.ComponentPropertyLocation).Value)

	start, err := ev.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, time.January, 20, 9, 0, 0, 0, loc)))

	rrProp := ev.GetProperty(ical.ComponentPropertyRrule)
	require.NotNil(t, rrProp)
	// Horizon: 2025-05-07 12:00 New York (EDT) is 16:00 UTC.
	assert.Contains(t, rrProp.Value, "UNTIL=20250507T160000Z")
}

func extractRRule(t *testing.T, doc string) string {
	t.Helper()
	for _, line := range strings.Split(doc, "\r\n") {
		if strings.HasPrefix(line, "RRULE:") {
			return strings.TrimPrefix(line, "RRULE:")
		}
	}
	t.Fatal("no RRULE line in document")
	return ""
}
