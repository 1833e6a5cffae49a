package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	wd, err := ParseWeekday("Sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, wd)

	wd, err = ParseWeekday("Saturday")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, wd)

	_, err = ParseWeekday("monday")
	assert.Error(t, err, "weekday names are case-sensitive, matching the extractor's enum")

	_, err = ParseWeekday("")
	assert.Error(t, err)
}

func TestDescription(t *testing.T) {
	ev := ScheduleEvent{CourseCode: "CS101", Instructor: "Dr. Liu"}
	assert.Equal(t, "Course: CS101\nInstructor: Dr. Liu", ev.Description())

	assert.Equal(t, "Course: CS101", ScheduleEvent{CourseCode: "CS101"}.Description())
	assert.Equal(t, "Instructor: Dr. Liu", ScheduleEvent{Instructor: "Dr. Liu"}.Description())
	assert.Empty(t, ScheduleEvent{}.Description())
}
