// Package app wires configuration, storage, sources and the run surfaces
// into one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	temporalclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/workpulse-io/workpulse/config"
	"github.com/workpulse-io/workpulse/db"
	"github.com/workpulse-io/workpulse/db/dao"
	"github.com/workpulse-io/workpulse/pipeline"
	"github.com/workpulse-io/workpulse/pkg/log"
	"github.com/workpulse-io/workpulse/pkg/schedule"
	"github.com/workpulse-io/workpulse/sources"
	"github.com/workpulse-io/workpulse/sources/jira"
	"github.com/workpulse-io/workpulse/sources/launchpad"
	"github.com/workpulse-io/workpulse/sources/mock"
	"github.com/workpulse-io/workpulse/temporalx"
	"github.com/workpulse-io/workpulse/temporalx/etl"
	"github.com/workpulse-io/workpulse/temporalx/temporalworker"
)

var (
	ErrApplicationStarted = errors.New("already started")
	ErrApplicationStopped = errors.New("already stopped")
)

type Application struct {
	nodeID string

	cfg *config.Config

	mux     sync.Mutex
	started bool

	stop chan struct{}

	log      *zap.SugaredLogger
	db       *db.DB
	events   *dao.EventDAO
	registry *sources.Registry

	tclient   temporalclient.Client
	worker    *temporalworker.Runner
	scheduler *schedule.Scheduler
}

func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		nodeID: uuid.NewString(),
		cfg:    cfg,
		stop:   make(chan struct{}),
	}

	if err := app.initialize(); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *Application) initialize() error {
	cfg := app.cfg

	logger, err := log.NewZapLogger(&log.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	app.log = logger

	database, err := db.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	app.db = database

	var daoOpts []dao.OptionFunc
	if cfg.Database.RetryStrategy == config.RetryStrategyFixed {
		daoOpts = append(daoOpts, dao.WithFixedDelays(cfg.Database.RetryDelays))
	}
	app.events, err = dao.NewEventDAO(database, cfg.Database.Table, daoOpts...)
	if err != nil {
		return err
	}

	app.registry, err = buildRegistry(cfg.Sources)
	if err != nil {
		return err
	}

	if cfg.Temporal.Enabled {
		client, err := temporalx.Dial(context.Background(), cfg.Temporal)
		if err != nil {
			return err
		}
		app.tclient = client

		acts := etl.NewActivities(app.registry, app.events.InsertBatch, cfg.Pipeline)
		app.worker = temporalworker.NewRunner(client, cfg.Temporal, acts)
	}

	if cfg.Scheduler.Enabled {
		scheduler, err := app.buildScheduler(cfg.Scheduler)
		if err != nil {
			return err
		}
		app.scheduler = scheduler
	}

	return nil
}

func buildRegistry(cfg config.SourcesConfig) (*sources.Registry, error) {
	registry := sources.NewRegistry()

	lpClient := launchpad.NewClient(cfg.Launchpad)
	register := []error{
		registry.RegisterExtractor(launchpad.SourceKindID, launchpad.EventKindBugs, launchpad.NewBugExtractor(lpClient)),
		registry.RegisterTransformer(launchpad.SourceKindID, launchpad.Transformer{}),
		registry.RegisterTransformer(jira.SourceKindID, jira.NewTransformer(jira.MapResolver(cfg.Jira.Employees))),
		registry.RegisterExtractor(mock.SourceKindID, mock.EventKind, mock.Source{}),
		registry.RegisterTransformer(mock.SourceKindID, mock.Source{}),
	}
	for _, err := range register {
		if err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// buildScheduler creates the in-process cron fallback. Each tick runs every
// configured job over the trailing week, sequentially to keep load bounded.
func (app *Application) buildScheduler(cfg config.SchedulerConfig) (*schedule.Scheduler, error) {
	scheduler := schedule.NewScheduler()
	for i, job := range cfg.Jobs {
		job := job
		task := &schedule.Task{
			Name: fmt.Sprintf("etl-%s-%s-%d", job.SourceKindID, job.EventKind, i),
			Spec: cfg.Cron,
			Do: func() {
				app.runJob(job)
			},
		}
		if err := scheduler.AddTask(task); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

func (app *Application) runJob(job config.SchedulerJob) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)
	for _, member := range job.Members {
		query := sources.Query{
			SourceKindID: job.SourceKindID,
			EventKind:    job.EventKind,
			Member:       member,
			DateStart:    start,
			DateEnd:      end,
		}
		summary, err := app.RunQuery(context.Background(), query)
		if err != nil {
			app.log.Errorw("scheduled run failed", "strategy", query.StrategyKey(),
				"member", member, "error", err)
			continue
		}
		app.log.Infow("scheduled run finished", "strategy", query.StrategyKey(),
			"member", member, "inserted", summary.ItemsInserted)
	}
}

// RunQuery executes one extraction in-process, without the workflow engine.
func (app *Application) RunQuery(ctx context.Context, query sources.Query) (*pipeline.RunSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	extractor, err := app.registry.Extractor(query)
	if err != nil {
		return nil, err
	}
	transformer, err := app.registry.Transformer(query.SourceKindID)
	if err != nil {
		return nil, err
	}

	records, err := extractor.Extract(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", query.StrategyKey(), err)
	}

	return pipeline.Run(ctx, records, transformer.Transform, app.events.InsertBatch, pipeline.Options{
		ChunkSize:           app.cfg.Pipeline.ChunkSize,
		MaxConcurrentChunks: app.cfg.Pipeline.MaxConcurrentChunks,
	})
}

func (app *Application) DB() *db.DB {
	return app.db
}

func (app *Application) Events() *dao.EventDAO {
	return app.events
}

func (app *Application) Registry() *sources.Registry {
	return app.registry
}

func (app *Application) TemporalClient() temporalclient.Client {
	return app.tclient
}

func (app *Application) NodeID() string {
	return app.nodeID
}

func (app *Application) Config() *config.Config {
	return app.cfg
}

// Start starts the configured surfaces: the Temporal worker, the cron
// fallback, or both.
func (app *Application) Start() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if app.started {
		return ErrApplicationStarted
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.events.EnsureTable(ctx); err != nil {
		return err
	}

	if app.worker != nil {
		if err := app.worker.Start(); err != nil {
			return err
		}
	}
	if app.scheduler != nil {
		app.scheduler.Start()
	}

	app.log.Infow("workpulse started", "version", config.VERSION, "node_id", app.nodeID)
	app.log.Debugw("database pool", "stats", app.db.Stats())
	app.started = true

	return nil
}

func (app *Application) Wait() {
	<-app.stop
}

// Stop stops application
func (app *Application) Stop() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if !app.started {
		return ErrApplicationStopped
	}

	app.log.Info("exiting")

	defer func() {
		app.log.Info("exit")
		_ = app.log.Sync()
	}()

	if app.scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.scheduler.Stop(ctx)
	}
	if app.worker != nil {
		app.worker.Stop()
	}
	if app.tclient != nil {
		app.tclient.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}

	app.started = false
	close(app.stop)

	return nil
}
