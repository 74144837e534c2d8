package model

import (
	"time"
)

// RawRecord is the loosely-typed record shape produced by source extractors.
// It exists only at the extraction/transform boundary; transforms convert it
// into an Event before anything reaches the persistence layer.
type RawRecord map[string]any

func (r RawRecord) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

func (r RawRecord) Properties(key string) Properties {
	switch v := r[key].(type) {
	case Properties:
		return v
	case map[string]any:
		return Properties(v)
	}
	return Properties{}
}

// Time parses the named field as an ISO-8601 timestamp. The zero time is
// returned for missing or malformed values; Finalize rejects it downstream.
func (r RawRecord) Time(key string) time.Time {
	s := r.String(key)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
