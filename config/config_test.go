package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, uint32(5432), cfg.Database.Port)
	assert.Equal(t, "events", cfg.Database.Table)
	assert.Equal(t, uint32(20), cfg.Database.MaxPoolSize)
	assert.Equal(t, RetryStrategyBackoff, cfg.Database.RetryStrategy)
	assert.Equal(t, 500, cfg.Pipeline.ChunkSize)
	assert.Equal(t, 3, cfg.Pipeline.MaxConcurrentChunks)
	assert.False(t, cfg.Temporal.Enabled)
	assert.Equal(t, "workpulse-etl", cfg.Temporal.TaskQueue)
	assert.Equal(t, "0 0 * * 0", cfg.Scheduler.Cron)
	assert.Equal(t, 30*time.Second, cfg.Sources.Launchpad.Timeout)
}

func TestLoadFile(t *testing.T) {
	content := []byte(`
database:
  host: db.internal
  table: launchpad_events
pipeline:
  chunk_size: 100
`)
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "launchpad_events", cfg.Database.Table)
	assert.Equal(t, 100, cfg.Pipeline.ChunkSize)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Pipeline.MaxConcurrentChunks)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WORKPULSE_DATABASE_PORT", "6432")
	t.Setenv("WORKPULSE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint32(6432), cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"empty table", func(c *Config) { c.Database.Table = "" }},
		{"pool sizes inverted", func(c *Config) { c.Database.MinPoolSize = 50 }},
		{"unknown retry strategy", func(c *Config) { c.Database.RetryStrategy = "jittered" }},
		{"fixed strategy without delays", func(c *Config) {
			c.Database.RetryStrategy = RetryStrategyFixed
			c.Database.RetryDelays = nil
		}},
		{"zero chunk size", func(c *Config) { c.Pipeline.ChunkSize = 0 }},
		{"negative concurrency", func(c *Config) { c.Pipeline.MaxConcurrentChunks = -1 }},
		{"bad cron", func(c *Config) { c.Scheduler.Enabled = true; c.Scheduler.Cron = "nope" }},
		{"job missing source", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.Jobs = []SchedulerJob{{EventKind: "bugs"}}
		}},
		{"temporal missing queue", func(c *Config) { c.Temporal.Enabled = true; c.Temporal.TaskQueue = "" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			test.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
