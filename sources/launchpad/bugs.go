package launchpad

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/workpulse-io/workpulse/model"
	"github.com/workpulse-io/workpulse/sources"
)

const (
	SourceKindID  = "launchpad"
	EventKindBugs = "bugs"

	version         = "1"
	specificVersion = "bugs-1"
)

// BugExtractor walks a member's bug tasks and emits one raw record per
// occurrence: the bug report itself and every comment the member wrote on it
// inside the query window.
type BugExtractor struct {
	client *Client
	log    *zap.SugaredLogger
}

func NewBugExtractor(client *Client) *BugExtractor {
	return &BugExtractor{
		client: client,
		log:    zap.S().Named("launchpad"),
	}
}

func (x *BugExtractor) Extract(ctx context.Context, q sources.Query) ([]model.RawRecord, error) {
	if q.Member == "" {
		x.log.Warn("no member specified in query")
		return nil, nil
	}

	p, err := x.client.Person(ctx, q.Member)
	if err != nil {
		return nil, err
	}
	if p == nil {
		// Malformed or inexistent member name.
		return nil, nil
	}

	tasks, err := x.client.SearchTasks(ctx, p,
		q.DateStart.Format("2006-01-02"), q.DateEnd.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	x.log.Infof("found %d bug tasks for member %s", len(tasks), q.Member)

	seen := make(map[string]bool)
	var records []model.RawRecord
	for _, task := range tasks {
		bugID := linkTail(task.BugLink)
		if bugID == "" || seen[bugID] {
			continue
		}
		seen[bugID] = true

		bugRecords, err := x.extractBugEvents(ctx, p, q, bugID, task)
		if err != nil {
			x.log.Warnf("skipping bug %s: %v", bugID, err)
			continue
		}
		records = append(records, bugRecords...)
	}
	return records, nil
}

func (x *BugExtractor) extractBugEvents(ctx context.Context, p *person, q sources.Query, bugID string, task bugTask) ([]model.RawRecord, error) {
	b, err := x.client.Bug(ctx, bugID)
	if err != nil {
		return nil, err
	}

	eventProperties := map[string]any{
		"status":     task.Status,
		"importance": task.Importance,
		"title":      b.Title,
	}
	metrics := map[string]any{
		"message_count":        b.MessageCount,
		"users_affected_count": b.UsersAffectedCount,
		"heat":                 b.Heat,
	}

	var records []model.RawRecord
	if b.OwnerLink == p.SelfLink && inWindow(b.DateCreated, q) {
		records = append(records, model.RawRecord{
			"event_id":         "bug:created-" + bugID,
			"parent_item_id":   bugID,
			"event_type":       "bug:created",
			"relation_type":    "author",
			"employee_id":      p.Name,
			"event_time_utc":   b.DateCreated,
			"time_zone":        p.TimeZone,
			"event_properties": eventProperties,
			"metrics":          metrics,
		})
	}

	messages, err := x.client.BugMessages(ctx, bugID)
	if err != nil {
		return nil, err
	}
	for i, m := range messages {
		// The first message is the bug description, already covered above.
		if i == 0 || m.OwnerLink != p.SelfLink || !inWindow(m.DateCreated, q) {
			continue
		}
		records = append(records, model.RawRecord{
			"event_id":         "bug:commented-" + bugID + "-" + m.DateCreated,
			"parent_item_id":   bugID,
			"event_type":       "bug:commented",
			"relation_type":    "commenter",
			"employee_id":      p.Name,
			"event_time_utc":   m.DateCreated,
			"time_zone":        p.TimeZone,
			"event_properties": eventProperties,
			"relation_properties": map[string]any{
				"subject": m.Subject,
			},
			"metrics": metrics,
		})
	}
	return records, nil
}

func inWindow(timestamp string, q sources.Query) bool {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return false
	}
	return !t.Before(q.DateStart) && !t.After(q.DateEnd)
}

func linkTail(link string) string {
	if link == "" {
		return ""
	}
	parts := strings.Split(strings.TrimSuffix(link, "/"), "/")
	return parts[len(parts)-1]
}
