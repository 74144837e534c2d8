package launchpad

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse-io/workpulse/config"
	"github.com/workpulse-io/workpulse/sources"
)

func mustQuery(t *testing.T) sources.Query {
	t.Helper()
	return sources.Query{
		SourceKindID: SourceKindID,
		EventKind:    EventKindBugs,
		Member:       "alice",
		DateStart:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateEnd:      time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
	}
}

func launchpadStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	var self string
	mux.HandleFunc("/~alice", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ws.op") == "searchTasks" {
			write(w, map[string]any{
				"entries": []map[string]any{
					{
						"bug_link":   self + "/bugs/101",
						"status":     "Triaged",
						"importance": "High",
						"title":      "Bug #101",
					},
					{
						// Duplicate task for the same bug; must be skipped.
						"bug_link": self + "/bugs/101",
						"status":   "Triaged",
					},
				},
			})
			return
		}
		write(w, map[string]any{
			"name":      "alice",
			"time_zone": "Europe/London",
			"self_link": self + "/~alice",
		})
	})
	mux.HandleFunc("/bugs/101", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{
			"id":                   101,
			"title":                "crash on resume",
			"date_created":         "2024-03-06T10:00:00Z",
			"owner_link":           self + "/~alice",
			"message_count":        3,
			"users_affected_count": 2,
			"heat":                 6,
		})
	})
	mux.HandleFunc("/bugs/101/messages", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{
			"entries": []map[string]any{
				{"owner_link": self + "/~alice", "date_created": "2024-03-06T10:00:00Z", "subject": "description"},
				{"owner_link": self + "/~bob", "date_created": "2024-03-07T09:00:00Z", "subject": "Re: crash"},
				{"owner_link": self + "/~alice", "date_created": "2024-03-08T11:30:00Z", "subject": "Re: crash"},
				{"owner_link": self + "/~alice", "date_created": "2023-01-01T00:00:00Z", "subject": "too old"},
			},
		})
	})
	mux.HandleFunc("/~nobody", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	self = srv.URL
	t.Cleanup(srv.Close)
	return srv
}

func newTestExtractor(t *testing.T, baseURL string) *BugExtractor {
	t.Helper()
	return NewBugExtractor(NewClient(config.LaunchpadConfig{
		ServiceRoot: baseURL,
		Timeout:     5 * time.Second,
	}))
}

func TestBugExtractor(t *testing.T) {
	srv := launchpadStub(t)
	x := newTestExtractor(t, srv.URL)

	records, err := x.Extract(context.Background(), mustQuery(t))
	require.NoError(t, err)
	// One bug:created plus one in-window comment by alice.
	require.Len(t, records, 2)

	assert.Equal(t, "bug:created", records[0].String("event_type"))
	assert.Equal(t, "101", records[0].String("parent_item_id"))
	assert.Equal(t, "alice", records[0].String("employee_id"))
	assert.Equal(t, "Triaged", records[0].Properties("event_properties")["status"])

	assert.Equal(t, "bug:commented", records[1].String("event_type"))
	assert.Equal(t, "commenter", records[1].String("relation_type"))

	// Records must transform cleanly.
	for _, record := range records {
		_, err := Transformer{}.Transform(record)
		assert.NoError(t, err)
	}
}

func TestBugExtractorUnknownMember(t *testing.T) {
	srv := launchpadStub(t)
	x := newTestExtractor(t, srv.URL)

	q := mustQuery(t)
	q.Member = "nobody"
	records, err := x.Extract(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBugExtractorNoMember(t *testing.T) {
	x := newTestExtractor(t, "http://localhost:0")
	q := mustQuery(t)
	q.Member = ""
	records, err := x.Extract(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, records)
}
