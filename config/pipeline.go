package config

import (
	"fmt"
)

type PipelineConfig struct {
	// ChunkSize is the number of raw records transformed and loaded as one
	// concurrency unit.
	ChunkSize int `mapstructure:"chunk_size" json:"chunk_size"`
	// MaxConcurrentChunks bounds the number of chunks in flight; resident
	// events never exceed chunk_size * max_concurrent_chunks.
	MaxConcurrentChunks int `mapstructure:"max_concurrent_chunks" json:"max_concurrent_chunks"`
}

func (cfg PipelineConfig) Validate() error {
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if cfg.MaxConcurrentChunks <= 0 {
		return fmt.Errorf("max_concurrent_chunks must be positive")
	}
	return nil
}
