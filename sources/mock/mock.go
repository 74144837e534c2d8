// Package mock provides a deterministic in-memory source used by tests and
// dry runs.
package mock

import (
	"context"
	"fmt"

	"github.com/workpulse-io/workpulse/model"
	"github.com/workpulse-io/workpulse/sources"
)

const (
	SourceKindID = "mock"
	EventKind    = "bugs"
)

// Source generates Count synthetic bug events spread over the query's date
// window, one parent per ten events.
type Source struct {
	Count int
}

func (s Source) Extract(ctx context.Context, q sources.Query) ([]model.RawRecord, error) {
	n := s.Count
	if n <= 0 {
		n = 100
	}
	start := q.DateStart
	records := make([]model.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, model.RawRecord{
			"event_id":       fmt.Sprintf("bug:created-%d", i),
			"parent_item_id": fmt.Sprintf("b-%d", i/10),
			"event_type":     "bug:created",
			"relation_type":  "author",
			"employee_id":    q.Member,
			"event_time_utc": start.AddDate(0, 0, i%30).Format("2006-01-02T15:04:05Z"),
			"event_properties": map[string]any{
				"status": "New",
			},
		})
	}
	return records, nil
}

func (s Source) Transform(record model.RawRecord) (*model.Event, error) {
	e := &model.Event{
		SourceKindID:       SourceKindID,
		ParentItemID:       record.String("parent_item_id"),
		EventID:            record.String("event_id"),
		EventType:          record.String("event_type"),
		RelationType:       record.String("relation_type"),
		EmployeeID:         record.String("employee_id"),
		EventTimeUTC:       record.Time("event_time_utc"),
		Timezone:           record.String("time_zone"),
		EventProperties:    record.Properties("event_properties"),
		RelationProperties: record.Properties("relation_properties"),
		Metrics:            record.Properties("metrics"),
		Version:            "mock",
		SpecificVersion:    "mock",
	}
	if err := e.Finalize(); err != nil {
		return nil, err
	}
	return e, nil
}
