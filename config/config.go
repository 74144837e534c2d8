package config

import (
	"github.com/pkg/errors"
)

// Config is the full runtime configuration. Values are loaded from an
// optional YAML file with WORKPULSE_* environment overrides; see Load.
type Config struct {
	Log       LogConfig       `mapstructure:"log" json:"log"`
	Database  DatabaseConfig  `mapstructure:"database" json:"database"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline" json:"pipeline"`
	Temporal  TemporalConfig  `mapstructure:"temporal" json:"temporal"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" json:"scheduler"`
	Sources   SourcesConfig   `mapstructure:"sources" json:"sources"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Log.Validate(); err != nil {
		return errors.Wrap(err, "log")
	}
	if err := cfg.Database.Validate(); err != nil {
		return errors.Wrap(err, "database")
	}
	if err := cfg.Pipeline.Validate(); err != nil {
		return errors.Wrap(err, "pipeline")
	}
	if err := cfg.Temporal.Validate(); err != nil {
		return errors.Wrap(err, "temporal")
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return errors.Wrap(err, "scheduler")
	}
	if err := cfg.Sources.Validate(); err != nil {
		return errors.Wrap(err, "sources")
	}
	return nil
}
