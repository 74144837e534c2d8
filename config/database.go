package config

import (
	"fmt"
	"slices"
)

const (
	RetryStrategyFixed   = "fixed"
	RetryStrategyBackoff = "backoff"
)

type DatabaseConfig struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     uint32 `mapstructure:"port" json:"port"`
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"-"`
	Database string `mapstructure:"database" json:"database"`

	// Table receiving the normalized events. Validated against a strict
	// identifier pattern before any DDL/DML interpolation.
	Table string `mapstructure:"table" json:"table"`

	MaxPoolSize     uint32 `mapstructure:"max_pool_size" json:"max_pool_size"`
	MinPoolSize     uint32 `mapstructure:"min_pool_size" json:"min_pool_size"`
	MaxLifetime     uint32 `mapstructure:"max_lifetime" json:"max_lifetime"`
	MaxIdleLifetime uint32 `mapstructure:"max_idle_lifetime" json:"max_idle_lifetime"`

	// RetryStrategy selects how failed batch writes are retried: "backoff"
	// doubles the delay per attempt, "fixed" makes one attempt per entry in
	// retry_delays.
	RetryStrategy string  `mapstructure:"retry_strategy" json:"retry_strategy"`
	RetryDelays   []int64 `mapstructure:"retry_delays" json:"retry_delays"`
}

func (cfg DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)
}

func (cfg DatabaseConfig) Validate() error {
	if cfg.Port > 65535 {
		return fmt.Errorf("port must be in the range [0, 65535]")
	}
	if cfg.Table == "" {
		return fmt.Errorf("table is required")
	}
	if cfg.MinPoolSize > cfg.MaxPoolSize {
		return fmt.Errorf("min_pool_size must not exceed max_pool_size")
	}
	if !slices.Contains([]string{RetryStrategyFixed, RetryStrategyBackoff}, cfg.RetryStrategy) {
		return fmt.Errorf("invalid retry_strategy: %s", cfg.RetryStrategy)
	}
	if cfg.RetryStrategy == RetryStrategyFixed && len(cfg.RetryDelays) == 0 {
		return fmt.Errorf("retry_delays is required for the fixed retry strategy")
	}
	return nil
}
