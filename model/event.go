package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate  = validator.New(validator.WithRequiredStructEnabled())
	eventType = reflect.TypeOf(Event{})
)

// Properties is a JSON-serializable key-value map persisted as JSONB.
type Properties map[string]any

func (m Properties) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(Properties{})
	}
	return json.Marshal(m)
}

func (m *Properties) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = Properties{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into Properties", src)
	}
}

// Event is one normalized activity record extracted from a collaboration
// tracker. An Event is built in memory by a source transform, validated and
// completed via Finalize, and is immutable afterwards. Its only destination
// is an insert-or-ignore write keyed on EventID.
type Event struct {
	ID int64 `db:"id" json:"id"`

	SourceKindID string `db:"source_kind_id" json:"source_kind_id" validate:"required"`
	ParentItemID string `db:"parent_item_id" json:"parent_item_id"`
	EventID      string `db:"event_id" json:"event_id" validate:"required"`

	EventType    string `db:"event_type" json:"event_type" validate:"required"`
	RelationType string `db:"relation_type" json:"relation_type" validate:"required"`

	EmployeeID string `db:"employee_id" json:"employee_id" validate:"required"`

	EventTimeUTC time.Time `db:"event_time_utc" json:"event_time_utc" validate:"required"`
	Week         string    `db:"week" json:"week"`
	Timezone     string    `db:"timezone" json:"timezone"`
	EventTime    time.Time `db:"event_time" json:"event_time"`

	EventProperties    Properties `db:"event_properties" json:"event_properties"`
	RelationProperties Properties `db:"relation_properties" json:"relation_properties"`
	Metrics            Properties `db:"metrics" json:"metrics"`

	Version         string `db:"version" json:"version"`
	SpecificVersion string `db:"specific_version" json:"specific_version"`
}

// Finalize validates the required fields and computes the derived ones. It is
// the single validation point: once Finalize returns nil the Event is trusted
// by every downstream component. No I/O happens here.
func (e *Event) Finalize() error {
	if err := validate.Struct(e); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("invalid event: field %s cannot be empty", fieldName(errs[0].Field()))
		}
		return fmt.Errorf("invalid event: %w", err)
	}

	if e.Week == "" {
		e.Week = WeekStart(e.EventTimeUTC)
	}
	if e.Timezone == "" {
		e.Timezone = "UTC"
	}
	if e.EventTime.IsZero() {
		loc, err := time.LoadLocation(e.Timezone)
		if err != nil {
			return fmt.Errorf("invalid event: unknown timezone %q", e.Timezone)
		}
		e.EventTime = e.EventTimeUTC.In(loc)
	}

	if e.EventProperties == nil {
		e.EventProperties = Properties{}
	}
	if e.RelationProperties == nil {
		e.RelationProperties = Properties{}
	}
	if e.Metrics == nil {
		e.Metrics = Properties{}
	}
	return nil
}

// WeekStart returns the Monday on/before the timestamp's calendar date in ISO
// YYYY-MM-DD format.
func WeekStart(t time.Time) string {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -daysSinceMonday).Format("2006-01-02")
}

func fieldName(structField string) string {
	t, ok := eventType.FieldByName(structField)
	if !ok {
		return structField
	}
	return t.Tag.Get("json")
}
