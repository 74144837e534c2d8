// Package temporalworker hosts the Temporal worker that polls the ETL task
// queue and executes workflows and activities.
package temporalworker

import (
	"fmt"
	"time"

	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/workpulse-io/workpulse/config"
	"github.com/workpulse-io/workpulse/temporalx/etl"
)

const (
	startAttempts = 5
	startBackoff  = 250 * time.Millisecond
)

// Runner owns the worker lifecycle. Start and Stop are called from a single
// goroutine.
type Runner struct {
	client    temporalclient.Client
	taskQueue string
	acts      *etl.Activities
	log       *zap.SugaredLogger
	w         worker.Worker
}

func NewRunner(c temporalclient.Client, cfg config.TemporalConfig, acts *etl.Activities) *Runner {
	return &Runner{
		client:    c,
		taskQueue: cfg.TaskQueue,
		acts:      acts,
		log:       zap.S().Named("worker"),
	}
}

// Start registers the ETL workflow and activities and begins polling. Poller
// start is retried while the namespace finishes registering.
func (r *Runner) Start() error {
	w := worker.New(r.client, r.taskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(etl.Workflow, workflow.RegisterOptions{Name: etl.WorkflowName})
	w.RegisterActivity(r.acts)

	var lastErr error
	delay := startBackoff
	for attempt := 1; attempt <= startAttempts; attempt++ {
		err := w.Start()
		if err == nil {
			r.w = w
			r.log.Infow("temporal worker started", "task_queue", r.taskQueue)
			return nil
		}
		lastErr = err
		r.log.Warnf("worker start attempt %d failed: %v", attempt, err)
		time.Sleep(delay)
		delay *= 2
	}
	return fmt.Errorf("temporal worker start failed: %w", lastErr)
}

func (r *Runner) Stop() {
	if r.w != nil {
		r.w.Stop()
		r.w = nil
	}
}
