package etl

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	"github.com/workpulse-io/workpulse/config"
	"github.com/workpulse-io/workpulse/pipeline"
	"github.com/workpulse-io/workpulse/sources"
)

// Activities bundles the worker-side dependencies of the ETL workflow.
type Activities struct {
	registry *sources.Registry
	load     pipeline.LoadFunc
	defaults config.PipelineConfig
	log      *zap.SugaredLogger
}

func NewActivities(registry *sources.Registry, load pipeline.LoadFunc, defaults config.PipelineConfig) *Activities {
	return &Activities{
		registry: registry,
		load:     load,
		defaults: defaults,
		log:      zap.S().Named("etl"),
	}
}

// ProcessSource extracts, transforms and loads every record the query
// matches. It heartbeats the completed-prefix offset after each chunk; a
// retried attempt re-extracts but skips records before the recorded offset,
// and the conflict-ignoring insert keeps any replayed chunk idempotent.
func (a *Activities) ProcessSource(ctx context.Context, input Input) (*pipeline.RunSummary, error) {
	if err := input.Query.Validate(); err != nil {
		return nil, err
	}

	extractor, err := a.registry.Extractor(input.Query)
	if err != nil {
		return nil, err
	}
	transformer, err := a.registry.Transformer(input.Query.SourceKindID)
	if err != nil {
		return nil, err
	}

	records, err := extractor.Extract(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", input.Query.StrategyKey(), err)
	}

	offset := 0
	if activity.HasHeartbeatDetails(ctx) {
		if err := activity.GetHeartbeatDetails(ctx, &offset); err != nil {
			a.log.Warnf("ignoring unreadable heartbeat details: %v", err)
			offset = 0
		}
	}
	if offset < 0 || offset > len(records) {
		a.log.Warnw("heartbeat offset out of range, restarting",
			"offset", offset, "records", len(records))
		offset = 0
	}

	opts := pipeline.Options{
		ChunkSize:           input.ChunkSize,
		MaxConcurrentChunks: input.MaxConcurrentChunks,
		StartOffset:         offset,
		OnProgress: func(processed int) {
			activity.RecordHeartbeat(ctx, processed)
		},
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = a.defaults.ChunkSize
	}
	if opts.MaxConcurrentChunks == 0 {
		opts.MaxConcurrentChunks = a.defaults.MaxConcurrentChunks
	}

	summary, err := pipeline.Run(ctx, records, transformer.Transform, a.load, opts)
	if err != nil {
		return nil, err
	}
	a.log.Infow("source processed",
		"strategy", input.Query.StrategyKey(),
		"extracted", summary.ItemsExtracted,
		"processed", summary.ItemsProcessed,
		"inserted", summary.ItemsInserted)
	return summary, nil
}
