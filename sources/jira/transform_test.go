package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse-io/workpulse/model"
)

var resolver = MapResolver{
	"712020:3db68bf2-18ce-4a92-8954-72b9dcd76c86": "emp-1",
	"712020:aaaaaaaa-0000-1111-2222-333333333333": "emp-2",
}

func issueRecord() model.RawRecord {
	return model.RawRecord{
		"event_id":       "issue_created-PROJ-17",
		"parent_item_id": "PROJ-17",
		"event_type":     "issue_created",
		"relation_type":  "author",
		"employee_id":    "712020:3db68bf2-18ce-4a92-8954-72b9dcd76c86",
		"event_time_utc": "2024-03-06T10:00:00Z",
		"time_zone":      "America/New_York",
		"event_properties": map[string]any{
			"status": "To Do",
		},
	}
}

func TestTransform(t *testing.T) {
	e, err := NewTransformer(resolver).Transform(issueRecord())
	require.NoError(t, err)
	assert.Equal(t, "jira", e.SourceKindID)
	assert.Equal(t, "emp-1", e.EmployeeID)
	assert.Equal(t, "2024-03-04", e.Week)
	assert.Equal(t, "America/New_York", e.Timezone)
}

func TestTransformMissingEmployee(t *testing.T) {
	record := issueRecord()
	delete(record, "employee_id")
	_, err := NewTransformer(resolver).Transform(record)
	assert.ErrorContains(t, err, "missing employee ID")

	record = issueRecord()
	record["employee_id"] = "712020:ffffffff-9999-8888-7777-666666666666"
	_, err = NewTransformer(resolver).Transform(record)
	assert.ErrorContains(t, err, "unknown employee")
}

func TestTransformAssigneeChange(t *testing.T) {
	record := issueRecord()
	record["event_type"] = "assignee_changed"
	record["event_properties"] = map[string]any{
		"change": map[string]any{
			"from": "712020:3db68bf2-18ce-4a92-8954-72b9dcd76c86",
			"to":   "712020:not-in-directory",
		},
	}

	e, err := NewTransformer(resolver).Transform(record)
	require.NoError(t, err)
	change := e.EventProperties["change"].(map[string]any)
	assert.Equal(t, "emp-1", change["from"])
	assert.Equal(t, "712020:not-in-directory", change["to"])
}

func TestTransformMentions(t *testing.T) {
	record := issueRecord()
	record["event_properties"] = map[string]any{
		"mentions": []any{
			"712020:aaaaaaaa-0000-1111-2222-333333333333",
			"712020:not-in-directory",
		},
	}

	e, err := NewTransformer(resolver).Transform(record)
	require.NoError(t, err)
	assert.Equal(t, []any{"emp-2", "712020:not-in-directory"}, e.EventProperties["mentions"])
}

func TestTransformMentionsFromBody(t *testing.T) {
	record := issueRecord()
	record["event_type"] = "comment_created"
	record["event_properties"] = map[string]any{
		"body": "ping [~accountid:712020:aaaaaaaa-0000-1111-2222-333333333333] please review",
	}

	e, err := NewTransformer(resolver).Transform(record)
	require.NoError(t, err)
	assert.Equal(t, "ping  please review", e.EventProperties["body"])
	assert.Equal(t, []any{"emp-2"}, e.EventProperties["mentions"])

	// An explicit mentions list wins over the body markup.
	record = issueRecord()
	record["event_type"] = "comment_created"
	record["event_properties"] = map[string]any{
		"body":     "ping [~accountid:712020:aaaaaaaa-0000-1111-2222-333333333333]",
		"mentions": []any{"712020:3db68bf2-18ce-4a92-8954-72b9dcd76c86"},
	}
	e, err = NewTransformer(resolver).Transform(record)
	require.NoError(t, err)
	assert.Equal(t, "ping [~accountid:712020:aaaaaaaa-0000-1111-2222-333333333333]", e.EventProperties["body"])
	assert.Equal(t, []any{"emp-1"}, e.EventProperties["mentions"])
}

func TestExtractMentions(t *testing.T) {
	text := "ping [~accountid:712020:3db68bf2-18ce-4a92-8954-72b9dcd76c86] please review"
	cleaned, ids := ExtractMentions(text)
	assert.Equal(t, "ping  please review", cleaned)
	assert.Equal(t, []string{"712020:3db68bf2-18ce-4a92-8954-72b9dcd76c86"}, ids)

	cleaned, ids = ExtractMentions("no mentions here")
	assert.Equal(t, "no mentions here", cleaned)
	assert.Nil(t, ids)
}
