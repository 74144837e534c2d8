package config

import (
	"fmt"
	"time"
)

type SourcesConfig struct {
	Launchpad LaunchpadConfig `mapstructure:"launchpad" json:"launchpad"`
	Jira      JiraConfig      `mapstructure:"jira" json:"jira"`
}

type JiraConfig struct {
	// Employees maps Jira account IDs to employee IDs. Records whose author
	// is not listed here are skipped at transform time.
	Employees map[string]string `mapstructure:"employees" json:"employees"`
}

type LaunchpadConfig struct {
	// ServiceRoot is the Launchpad web-service root, e.g.
	// https://api.launchpad.net/devel.
	ServiceRoot string        `mapstructure:"service_root" json:"service_root"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

func (cfg SourcesConfig) Validate() error {
	if cfg.Launchpad.ServiceRoot == "" {
		return fmt.Errorf("launchpad.service_root is required")
	}
	if cfg.Launchpad.Timeout <= 0 {
		return fmt.Errorf("launchpad.timeout must be positive")
	}
	return nil
}
