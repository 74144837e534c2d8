package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// SchedulerConfig drives the in-process cron scheduler used when no workflow
// engine is deployed. Each job runs every configured member of a source over
// the trailing week.
type SchedulerConfig struct {
	Enabled bool           `mapstructure:"enabled" json:"enabled"`
	Cron    string         `mapstructure:"cron" json:"cron"`
	Jobs    []SchedulerJob `mapstructure:"jobs" json:"jobs"`
}

type SchedulerJob struct {
	SourceKindID string   `mapstructure:"source_kind_id" json:"source_kind_id"`
	EventKind    string   `mapstructure:"event_kind" json:"event_kind"`
	Members      []string `mapstructure:"members" json:"members"`
}

func (cfg SchedulerConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}
	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		return fmt.Errorf("invalid cron %q: %s", cfg.Cron, err)
	}
	for i, job := range cfg.Jobs {
		if job.SourceKindID == "" {
			return fmt.Errorf("jobs[%d]: source_kind_id is required", i)
		}
		if job.EventKind == "" {
			return fmt.Errorf("jobs[%d]: event_kind is required", i)
		}
	}
	return nil
}
