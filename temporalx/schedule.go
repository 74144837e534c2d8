package temporalx

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/workpulse-io/workpulse/config"
	"github.com/workpulse-io/workpulse/sources"
	"github.com/workpulse-io/workpulse/temporalx/etl"
)

// ScheduleID names the weekly schedule for one source and event kind. One
// schedule per pair; re-creating it is a no-op.
func ScheduleID(q sources.Query) string {
	return fmt.Sprintf("weekly-etl-%s-%s", q.SourceKindID, q.EventKind)
}

// CreateWeeklySchedule registers a calendar schedule that starts the ETL
// workflow once a week. dayOfWeek follows the Temporal convention, 0 is
// Sunday.
func CreateWeeklySchedule(ctx context.Context, c temporalclient.Client, cfg config.TemporalConfig, input etl.Input, dayOfWeek, hour int) error {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return fmt.Errorf("day_of_week %d out of range [0, 6]", dayOfWeek)
	}
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour %d out of range [0, 23]", hour)
	}
	if err := input.Query.Validate(); err != nil {
		return err
	}

	id := ScheduleID(input.Query)
	_, err := c.ScheduleClient().Create(ctx, temporalclient.ScheduleOptions{
		ID: id,
		Spec: temporalclient.ScheduleSpec{
			Calendars: []temporalclient.ScheduleCalendarSpec{
				{
					DayOfWeek: []temporalclient.ScheduleRange{{Start: dayOfWeek}},
					Hour:      []temporalclient.ScheduleRange{{Start: hour}},
				},
			},
		},
		Action: &temporalclient.ScheduleWorkflowAction{
			ID:        id + "-run",
			Workflow:  etl.WorkflowName,
			Args:      []interface{}{input},
			TaskQueue: cfg.TaskQueue,
		},
	})
	if err != nil {
		var exists *serviceerror.AlreadyExists
		if errors.As(err, &exists) || errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
			zap.S().Named("temporal").Infow("schedule already exists", "schedule_id", id)
			return nil
		}
		return fmt.Errorf("create schedule %s: %w", id, err)
	}
	zap.S().Named("temporal").Infow("schedule created",
		"schedule_id", id, "day_of_week", dayOfWeek, "hour", hour)
	return nil
}
