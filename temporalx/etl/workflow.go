// Package etl holds the Temporal workflow and activities that run one
// extraction end to end.
package etl

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/workpulse-io/workpulse/pipeline"
)

// Workflow runs one extraction as a single long-running activity. The
// activity heartbeats the offset of the completed chunk prefix, so a retried
// attempt resumes loading where the previous one stopped instead of starting
// over.
func Workflow(ctx workflow.Context, input Input) (map[string]any, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Hour,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	})

	var result pipeline.RunSummary
	if err := workflow.ExecuteActivity(ctx, ActivityProcessSource, input).Get(ctx, &result); err != nil {
		return nil, err
	}

	summary := input.Query.SummaryBase()
	summary["workflow_id"] = workflow.GetInfo(ctx).WorkflowExecution.ID
	summary["items_extracted"] = result.ItemsExtracted
	summary["items_processed"] = result.ItemsProcessed
	summary["items_inserted"] = result.ItemsInserted
	summary["chunks_processed"] = result.ChunksProcessed
	return summary, nil
}
