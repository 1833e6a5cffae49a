package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedcal/internal/model"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.ScheduleEvent)
		wantErr error
	}{
		{
			name:   "valid recurring event",
			mutate: func(*model.ScheduleEvent) {},
		},
		{
			name: "valid dated one-time event",
			mutate: func(e *model.ScheduleEvent) {
				e.IsOneTime = true
				e.Date = "2025-12-12"
			},
		},
		{
			name: "impossible calendar date",
			mutate: func(e *model.ScheduleEvent) {
				e.IsOneTime = true
				e.Date = "2025-13-40"
			},
			wantErr: ErrInvalidDateFormat,
		},
		{
			name: "date not ISO formatted",
			mutate: func(e *model.ScheduleEvent) {
				e.IsOneTime = true
				e.Date = "12/12/2025"
			},
			wantErr: ErrInvalidDateFormat,
		},
		{
			name:    "start time missing colon",
			mutate:  func(e *model.ScheduleEvent) { e.StartTime = "0900" },
			wantErr: ErrInvalidTimeFormat,
		},
		{
			name:    "end time non-numeric",
			mutate:  func(e *model.ScheduleEvent) { e.EndTime = "ab:cd" },
			wantErr: ErrInvalidTimeFormat,
		},
		{
			name:    "hour out of range",
			mutate:  func(e *model.ScheduleEvent) { e.StartTime = "24:00" },
			wantErr: ErrInvalidTimeFormat,
		},
		{
			name:    "minute out of range",
			mutate:  func(e *model.ScheduleEvent) { e.EndTime = "09:60" },
			wantErr: ErrInvalidTimeFormat,
		},
		{
			name: "one-time event with no date and no weekday",
			mutate: func(e *model.ScheduleEvent) {
				e.IsOneTime = true
				e.DayOfWeek = ""
			},
			wantErr: ErrMissingAnchor,
		},
		{
			name:    "unknown weekday on recurring event",
			mutate:  func(e *model.ScheduleEvent) { e.DayOfWeek = "Funday" },
			wantErr: ErrMissingAnchor,
		},
		{
			name: "unknown weekday irrelevant on dated one-time event",
			mutate: func(e *model.ScheduleEvent) {
				e.IsOneTime = true
				e.Date = "2025-12-12"
				e.DayOfWeek = "Funday"
			},
		},
		{
			name: "descriptive fields are never validated",
			mutate: func(e *model.ScheduleEvent) {
				e.Location = "???\x00"
				e.Instructor = "\n\n"
				e.CourseCode = "   "
			},
		},
		{
			name: "end before start passes through",
			mutate: func(e *model.ScheduleEvent) {
				e.StartTime = "10:00"
				e.EndTime = "09:00"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := model.ScheduleEvent{
				Title:     "CS 101",
				DayOfWeek: "Monday",
				StartTime: "09:00",
				EndTime:   "09:50",
			}
			tt.mutate(&ev)

			err := ValidateRequest(model.ExportRequest{Events: []model.ScheduleEvent{ev}})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// One malformed event fails the whole request before anything is resolved.
func TestMaterializeRequestFailsFast(t *testing.T) {
	req := model.ExportRequest{
		Timezone: "UTC",
		Events: []model.ScheduleEvent{
			{Title: "CS 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "09:50"},
			{Title: "Final Exam", DayOfWeek: "Friday", StartTime: "14:00", EndTime: "16:00", IsOneTime: true, Date: "2025-13-40"},
		},
	}

	items, err := MaterializeRequest(req, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
	assert.Nil(t, items)
}

func TestMaterializeRequestUnknownTimezone(t *testing.T) {
	req := model.ExportRequest{
		Timezone: "Mars/Olympus_Mons",
		Events: []model.ScheduleEvent{
			{Title: "CS 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "09:50"},
		},
	}

	_, err := MaterializeRequest(req, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus_Mons")
}
