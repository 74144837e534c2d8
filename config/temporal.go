package config

import (
	"fmt"
)

type TemporalConfig struct {
	Enabled   bool   `mapstructure:"enabled" json:"enabled"`
	HostPort  string `mapstructure:"host_port" json:"host_port"`
	Namespace string `mapstructure:"namespace" json:"namespace"`
	TaskQueue string `mapstructure:"task_queue" json:"task_queue"`
}

func (cfg TemporalConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.HostPort == "" {
		return fmt.Errorf("host_port is required")
	}
	if cfg.TaskQueue == "" {
		return fmt.Errorf("task_queue is required")
	}
	return nil
}
