// Package sources holds the contracts between the pipeline core and the
// per-tracker scraping logic, and the registry that binds them. Sources are
// registered explicitly at startup; there is no runtime discovery.
package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/workpulse-io/workpulse/model"
)

// Query carries the run-level parameters for one extraction.
type Query struct {
	SourceKindID string            `json:"source_kind_id"`
	EventKind    string            `json:"event_kind"`
	Member       string            `json:"member"`
	DateStart    time.Time         `json:"date_start"`
	DateEnd      time.Time         `json:"date_end"`
	Args         map[string]string `json:"args,omitempty"`
}

func (q Query) Validate() error {
	if q.SourceKindID == "" {
		return fmt.Errorf("source_kind_id is required")
	}
	if q.EventKind == "" {
		return fmt.Errorf("event_kind is required")
	}
	return nil
}

// StrategyKey identifies the extractor registration for this query.
func (q Query) StrategyKey() string {
	return q.SourceKindID + "-" + q.EventKind
}

// SummaryBase seeds the run summary with extraction metadata.
func (q Query) SummaryBase() map[string]any {
	return map[string]any{
		"source_kind_id": q.SourceKindID,
		"event_kind":     q.EventKind,
		"member":         q.Member,
		"date_start":     q.DateStart.Format("2006-01-02"),
		"date_end":       q.DateEnd.Format("2006-01-02"),
	}
}

// Extractor produces raw records from one tracker. Implementations own all
// tracker-specific API access.
type Extractor interface {
	Extract(ctx context.Context, q Query) ([]model.RawRecord, error)
}

// Transformer converts one raw record into a finalized Event.
type Transformer interface {
	Transform(record model.RawRecord) (*model.Event, error)
}

// Registry maps source identifiers to their extraction and transform
// implementations. It is populated once at startup and read-only afterwards.
type Registry struct {
	mux          sync.RWMutex
	extractors   map[string]Extractor
	transformers map[string]Transformer
}

func NewRegistry() *Registry {
	return &Registry{
		extractors:   make(map[string]Extractor),
		transformers: make(map[string]Transformer),
	}
}

func (r *Registry) RegisterExtractor(sourceKindID, eventKind string, e Extractor) error {
	key := sourceKindID + "-" + eventKind
	r.mux.Lock()
	defer r.mux.Unlock()
	if _, exists := r.extractors[key]; exists {
		return fmt.Errorf("extractor already registered: %s", key)
	}
	r.extractors[key] = e
	return nil
}

func (r *Registry) Extractor(q Query) (Extractor, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	e, ok := r.extractors[q.StrategyKey()]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for %s", q.StrategyKey())
	}
	return e, nil
}

func (r *Registry) RegisterTransformer(sourceKindID string, t Transformer) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if _, exists := r.transformers[sourceKindID]; exists {
		return fmt.Errorf("transformer already registered: %s", sourceKindID)
	}
	r.transformers[sourceKindID] = t
	return nil
}

func (r *Registry) Transformer(sourceKindID string) (Transformer, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	t, ok := r.transformers[sourceKindID]
	if !ok {
		return nil, fmt.Errorf("no transformer registered for %s", sourceKindID)
	}
	return t, nil
}
