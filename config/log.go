package config

import (
	"fmt"
	"slices"
)

type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
	File   string `mapstructure:"file" json:"file"`
}

func (cfg LogConfig) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.Level) {
		return fmt.Errorf("invalid level: %s", cfg.Level)
	}
	if !slices.Contains([]string{"text", "json"}, cfg.Format) {
		return fmt.Errorf("invalid format: %s", cfg.Format)
	}
	return nil
}
