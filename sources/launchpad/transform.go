package launchpad

import (
	"github.com/workpulse-io/workpulse/model"
)

// Transformer turns raw Launchpad records into Events. The employee identity
// is the Launchpad member name; anonymization happens upstream of loading
// when an EmployeeResolver is configured on the pipeline.
type Transformer struct{}

func (Transformer) Transform(record model.RawRecord) (*model.Event, error) {
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
		Version:            version,
		SpecificVersion:    specificVersion,
	}
	if err := e.Finalize(); err != nil {
		return nil, err
	}
	return e, nil
}
