// Package temporalx wraps the Temporal SDK for the worker and queuer
// surfaces: client dialing, workflow starts and weekly schedules.
package temporalx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	temporalclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/workpulse-io/workpulse/config"
	"github.com/workpulse-io/workpulse/temporalx/etl"
)

const (
	dialAttempts = 5
	dialTimeout  = 5 * time.Second
)

// Dial connects to the Temporal frontend, retrying while the service comes
// up. The caller owns Close on the returned client.
func Dial(ctx context.Context, cfg config.TemporalConfig) (temporalclient.Client, error) {
	log := zap.S().Named("temporal")
	opts := temporalclient.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    newLogAdapter(log),
	}

	var lastErr error
	delay := 250 * time.Millisecond
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		c, err := temporalclient.DialContext(dialCtx, opts)
		cancel()
		if err == nil {
			if attempt > 1 {
				log.Infow("connected to temporal", "host_port", cfg.HostPort, "attempts", attempt)
			}
			return c, nil
		}
		lastErr = err
		log.Warnf("temporal dial attempt %d failed: %v", attempt, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, fmt.Errorf("temporal dial failed (host_port=%s namespace=%s): %w",
		cfg.HostPort, cfg.Namespace, lastErr)
}

// StartETL starts one ETL workflow execution for the given input.
func StartETL(ctx context.Context, c temporalclient.Client, cfg config.TemporalConfig, input etl.Input) (temporalclient.WorkflowRun, error) {
	opts := temporalclient.StartWorkflowOptions{
		ID: fmt.Sprintf("etl-%s-%s-%s",
			input.Query.SourceKindID, input.Query.EventKind, uuid.NewString()),
		TaskQueue: cfg.TaskQueue,
	}
	return c.ExecuteWorkflow(ctx, opts, etl.WorkflowName, input)
}
