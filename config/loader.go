package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the optional YAML file at path, with
// WORKPULSE_* environment variables taking precedence over file values
// (e.g. WORKPULSE_DATABASE_PASSWORD overrides database.password).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "workpulse")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "workpulse")
	v.SetDefault("database.table", "events")
	v.SetDefault("database.max_pool_size", 20)
	v.SetDefault("database.min_pool_size", 1)
	v.SetDefault("database.max_lifetime", 3600)
	v.SetDefault("database.max_idle_lifetime", 600)
	v.SetDefault("database.retry_strategy", "backoff")
	v.SetDefault("database.retry_delays", []int64{1, 2, 5})

	v.SetDefault("pipeline.chunk_size", 500)
	v.SetDefault("pipeline.max_concurrent_chunks", 3)

	v.SetDefault("temporal.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "workpulse-etl")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.cron", "0 0 * * 0")

	v.SetDefault("sources.launchpad.service_root", "https://api.launchpad.net/devel")
	v.SetDefault("sources.launchpad.timeout", "30s")

	v.SetEnvPrefix("WORKPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
