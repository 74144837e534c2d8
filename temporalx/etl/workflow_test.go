package etl

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/workpulse-io/workpulse/config"
	"github.com/workpulse-io/workpulse/pipeline"
	"github.com/workpulse-io/workpulse/sources"
)

func testInput() Input {
	return Input{
		Query: sources.Query{
			SourceKindID: "mock",
			EventKind:    "bugs",
			Member:       "alice",
			DateStart:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			DateEnd:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestWorkflowSummary(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	acts := NewActivities(sources.NewRegistry(), nil, config.PipelineConfig{})
	env.RegisterActivity(acts)
	env.OnActivity(ActivityProcessSource, mock.Anything, mock.Anything).Return(&pipeline.RunSummary{
		ItemsExtracted:  250,
		ItemsProcessed:  249,
		ItemsInserted:   240,
		ChunksProcessed: 3,
	}, nil)

	env.ExecuteWorkflow(Workflow, testInput())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var summary map[string]any
	require.NoError(t, env.GetWorkflowResult(&summary))
	assert.Equal(t, "mock", summary["source_kind_id"])
	assert.Equal(t, "bugs", summary["event_kind"])
	assert.Equal(t, "alice", summary["member"])
	assert.Equal(t, "2024-03-01", summary["date_start"])
	assert.EqualValues(t, 250, summary["items_extracted"])
	assert.EqualValues(t, 249, summary["items_processed"])
	assert.EqualValues(t, 240, summary["items_inserted"])
	assert.EqualValues(t, 3, summary["chunks_processed"])
	assert.NotEmpty(t, summary["workflow_id"])
}

func TestWorkflowActivityFailure(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	acts := NewActivities(sources.NewRegistry(), nil, config.PipelineConfig{})
	env.RegisterActivity(acts)
	env.OnActivity(ActivityProcessSource, mock.Anything, mock.Anything).
		Return(nil, errors.New("tracker unreachable"))

	env.ExecuteWorkflow(Workflow, testInput())

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracker unreachable")
}
