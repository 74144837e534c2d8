package etl

import (
	"github.com/workpulse-io/workpulse/sources"
)

const (
	// WorkflowName is the registered workflow name; starters and schedules
	// reference it instead of the Go symbol.
	WorkflowName = "etl"

	ActivityProcessSource = "ProcessSource"
)

// Input is the serialized argument of an ETL workflow execution. Zero chunk
// settings fall back to the worker's configured defaults.
type Input struct {
	Query               sources.Query `json:"query"`
	ChunkSize           int           `json:"chunk_size,omitempty"`
	MaxConcurrentChunks int           `json:"max_concurrent_chunks,omitempty"`
}
