package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() *Event {
	return &Event{
		SourceKindID: "launchpad",
		ParentItemID: "bug-1024",
		EventID:      "bug:created-1024",
		EventType:    "bug:created",
		RelationType: "author",
		EmployeeID:   "emp-42",
		EventTimeUTC: time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC),
	}
}

func TestFinalize(t *testing.T) {
	e := validEvent()
	require.NoError(t, e.Finalize())

	assert.Equal(t, "2024-03-04", e.Week)
	assert.Equal(t, "UTC", e.Timezone)
	assert.Equal(t, e.EventTimeUTC, e.EventTime)
	assert.NotNil(t, e.EventProperties)
	assert.NotNil(t, e.RelationProperties)
	assert.NotNil(t, e.Metrics)
}

func TestFinalizeRequiredFields(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Event)
	}{
		{"source_kind_id", func(e *Event) { e.SourceKindID = "" }},
		{"event_id", func(e *Event) { e.EventID = "" }},
		{"event_type", func(e *Event) { e.EventType = "" }},
		{"relation_type", func(e *Event) { e.RelationType = "" }},
		{"employee_id", func(e *Event) { e.EmployeeID = "" }},
		{"event_time_utc", func(e *Event) { e.EventTimeUTC = time.Time{} }},
	}
	for _, test := range tests {
		t.Run(test.field, func(t *testing.T) {
			e := validEvent()
			test.mutate(e)
			err := e.Finalize()
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.field)
		})
	}
}

func TestFinalizeParentOptional(t *testing.T) {
	e := validEvent()
	e.ParentItemID = ""
	assert.NoError(t, e.Finalize())
}

func TestFinalizeTimezone(t *testing.T) {
	e := validEvent()
	e.Timezone = "Europe/Madrid"
	require.NoError(t, e.Finalize())
	// CET is UTC+1 in March before the DST switch.
	assert.Equal(t, 11, e.EventTime.Hour())
	assert.Equal(t, e.EventTimeUTC.Unix(), e.EventTime.Unix())

	e = validEvent()
	e.Timezone = "Not/AZone"
	assert.Error(t, e.Finalize())
}

func TestFinalizeKeepsExplicitValues(t *testing.T) {
	e := validEvent()
	e.Week = "2024-03-11"
	e.Timezone = "UTC"
	e.EventTime = e.EventTimeUTC.Add(time.Hour)
	require.NoError(t, e.Finalize())
	assert.Equal(t, "2024-03-11", e.Week)
	assert.Equal(t, e.EventTimeUTC.Add(time.Hour), e.EventTime)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC), "2024-03-04"},  // Wednesday
		{time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "2024-03-04"},   // Monday itself
		{time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC), "2024-03-04"}, // Sunday
		{time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), "2024-01-01"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, WeekStart(test.in))
	}
}

func TestRawRecordAccessors(t *testing.T) {
	r := RawRecord{
		"event_id":       "bug:created-1",
		"event_time_utc": "2024-03-06T10:00:00Z",
		"metrics":        map[string]any{"comments": 3},
	}
	assert.Equal(t, "bug:created-1", r.String("event_id"))
	assert.Equal(t, "", r.String("missing"))
	assert.Equal(t, time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC), r.Time("event_time_utc"))
	assert.True(t, r.Time("missing").IsZero())
	assert.Equal(t, Properties{"comments": 3}, r.Properties("metrics"))
	assert.Equal(t, Properties{}, r.Properties("missing"))
}
