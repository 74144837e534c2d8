// Package jira transforms pre-extracted Jira activity records into events.
// Extraction and the HR identity directory are external collaborators; the
// transformer only needs a resolver from Jira account IDs to employee IDs.
package jira

import (
	"fmt"
	"regexp"

	"github.com/workpulse-io/workpulse/model"
)

const (
	SourceKindID = "jira"

	version         = "1"
	specificVersion = "issues-1"
)

// mentionPattern matches inline account-id mentions, e.g.
// [~accountid:712020:3db68bf2-18ce-4a92-8954-72b9dcd76c86].
var mentionPattern = regexp.MustCompile(`\[~accountid:([0-9]+:[a-f0-9-]{36})\]`)

// EmployeeResolver maps a source-native identity to an employee ID. A failed
// lookup returns ("", nil); hard failures abort the record.
type EmployeeResolver interface {
	Resolve(sourceID string) (string, error)
}

// MapResolver is a static EmployeeResolver backed by an in-memory table.
type MapResolver map[string]string

func (m MapResolver) Resolve(sourceID string) (string, error) {
	return m[sourceID], nil
}

type Transformer struct {
	resolver EmployeeResolver
}

func NewTransformer(resolver EmployeeResolver) *Transformer {
	return &Transformer{resolver: resolver}
}

func (t *Transformer) Transform(record model.RawRecord) (*model.Event, error) {
	accountID := record.String("employee_id")
	if accountID == "" {
		return nil, fmt.Errorf("jira: record %s: missing employee ID", record.String("event_id"))
	}
	employeeID, err := t.resolver.Resolve(accountID)
	if err != nil {
		return nil, fmt.Errorf("jira: resolve %s: %w", accountID, err)
	}
	if employeeID == "" {
		return nil, fmt.Errorf("jira: record %s: unknown employee %s", record.String("event_id"), accountID)
	}

	e := &model.Event{
		SourceKindID:       SourceKindID,
		ParentItemID:       record.String("parent_item_id"),
		EventID:            record.String("event_id"),
		EventType:          record.String("event_type"),
		RelationType:       record.String("relation_type"),
		EmployeeID:         employeeID,
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

	switch {
	case e.EventType == "assignee_changed":
		t.resolveChange(e)
	default:
		t.deriveMentions(e)
		if e.EventProperties["mentions"] != nil {
			t.resolveMentions(e)
		}
	}
	return e, nil
}

// deriveMentions populates the mentions property from inline account-id
// markup in the comment body when extraction did not supply one, stripping
// the markup from the stored body.
func (t *Transformer) deriveMentions(e *model.Event) {
	if e.EventProperties["mentions"] != nil {
		return
	}
	body, ok := e.EventProperties["body"].(string)
	if !ok {
		return
	}
	cleaned, ids := ExtractMentions(body)
	if len(ids) == 0 {
		return
	}
	e.EventProperties["body"] = cleaned
	mentions := make([]any, 0, len(ids))
	for _, id := range ids {
		mentions = append(mentions, id)
	}
	e.EventProperties["mentions"] = mentions
}

// resolveChange rewrites the from/to account IDs of an assignee change to
// employee IDs where the directory knows them.
func (t *Transformer) resolveChange(e *model.Event) {
	change, ok := e.EventProperties["change"].(map[string]any)
	if !ok {
		return
	}
	for _, field := range []string{"from", "to"} {
		accountID, ok := change[field].(string)
		if !ok || accountID == "" {
			continue
		}
		if id, err := t.resolver.Resolve(accountID); err == nil && id != "" {
			change[field] = id
		}
	}
}

// resolveMentions rewrites mention account IDs; unknown mentions keep the
// original Jira ID.
func (t *Transformer) resolveMentions(e *model.Event) {
	mentions, ok := e.EventProperties["mentions"].([]any)
	if !ok {
		return
	}
	resolved := make([]any, 0, len(mentions))
	for _, m := range mentions {
		accountID, ok := m.(string)
		if !ok {
			resolved = append(resolved, m)
			continue
		}
		if id, err := t.resolver.Resolve(accountID); err == nil && id != "" {
			resolved = append(resolved, id)
		} else {
			resolved = append(resolved, accountID)
		}
	}
	e.EventProperties["mentions"] = resolved
}

// ExtractMentions strips inline account-id mentions from text, returning the
// cleaned text and the IDs found.
func ExtractMentions(text string) (string, []string) {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return mentionPattern.ReplaceAllString(text, ""), ids
}
