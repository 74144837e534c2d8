package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse-io/workpulse/config"
	"github.com/workpulse-io/workpulse/sources"
	"github.com/workpulse-io/workpulse/sources/mock"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestNewApplication(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)

	assert.NotEmpty(t, app.NodeID())
	assert.NotNil(t, app.DB())
	assert.NotNil(t, app.Events())
	assert.NotNil(t, app.Registry())
	assert.Nil(t, app.TemporalClient())

	assert.ErrorIs(t, app.Stop(), ErrApplicationStopped)
}

func TestBuildRegistry(t *testing.T) {
	cfg := testConfig(t)
	registry, err := buildRegistry(cfg.Sources)
	require.NoError(t, err)

	query := sources.Query{SourceKindID: "launchpad", EventKind: "bugs"}
	_, err = registry.Extractor(query)
	assert.NoError(t, err)
	_, err = registry.Extractor(sources.Query{SourceKindID: mock.SourceKindID, EventKind: mock.EventKind})
	assert.NoError(t, err)
	_, err = registry.Transformer("jira")
	assert.NoError(t, err)
	_, err = registry.Transformer("mock")
	assert.NoError(t, err)

	query.SourceKindID = "github"
	_, err = registry.Extractor(query)
	assert.Error(t, err)
}

func TestBuildScheduler(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Jobs = []config.SchedulerJob{
		{SourceKindID: "mock", EventKind: "bugs", Members: []string{"alice"}},
	}

	app, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, app.scheduler)
	assert.NotNil(t, app.scheduler.GetTask("etl-mock-bugs-0"))
}
