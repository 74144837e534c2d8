// Package launchpad extracts bug activity from the Launchpad web service and
// transforms it into normalized events.
package launchpad

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"

	"github.com/workpulse-io/workpulse/config"
)

// bugTaskStatuses mirrors the full Launchpad status set; searchTasks defaults
// to open tasks only unless every status is requested explicitly.
var bugTaskStatuses = []string{
	"New",
	"Incomplete",
	"Opinion",
	"Invalid",
	"Won't Fix",
	"Expired",
	"Confirmed",
	"Triaged",
	"In Progress",
	"Deferred",
	"Fix Committed",
	"Fix Released",
	"Does Not Exist",
}

type person struct {
	Name     string `json:"name"`
	TimeZone string `json:"time_zone"`
	SelfLink string `json:"self_link"`
}

type bugTask struct {
	BugLink      string `json:"bug_link"`
	Status       string `json:"status"`
	Importance   string `json:"importance"`
	Title        string `json:"title"`
	DateCreated  string `json:"date_created"`
	OwnerLink    string `json:"owner_link"`
	AssigneeLink string `json:"assignee_link"`
}

type bug struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	DateCreated        string `json:"date_created"`
	OwnerLink          string `json:"owner_link"`
	MessageCount       int    `json:"message_count"`
	UsersAffectedCount int    `json:"users_affected_count"`
	Heat               int    `json:"heat"`
}

type message struct {
	OwnerLink   string `json:"owner_link"`
	DateCreated string `json:"date_created"`
	Subject     string `json:"subject"`
}

type collection[T any] struct {
	Entries            []T    `json:"entries"`
	NextCollectionLink string `json:"next_collection_link"`
}

// Client is a thin wrapper over the Launchpad REST API.
type Client struct {
	rest *resty.Client
}

func NewClient(cfg config.LaunchpadConfig) *Client {
	return &Client{
		rest: resty.New().
			SetBaseURL(cfg.ServiceRoot).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Person resolves a Launchpad member by name. A missing member yields an
// empty extraction, not a failure, so it returns (nil, nil).
func (c *Client) Person(ctx context.Context, member string) (*person, error) {
	var p person
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&p).
		Get("/~" + member)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("launchpad: person %s: %s", member, resp.Status())
	}
	return &p, nil
}

// SearchTasks pages through the member's bug tasks created inside the window.
func (c *Client) SearchTasks(ctx context.Context, p *person, createdSince, createdBefore string) ([]bugTask, error) {
	params := url.Values{
		"ws.op":          {"searchTasks"},
		"created_since":  {createdSince},
		"created_before": {createdBefore},
		"status":         bugTaskStatuses,
	}

	var tasks []bugTask
	next := "/~" + p.Name
	first := true
	for next != "" {
		var page collection[bugTask]
		req := c.rest.R().SetContext(ctx).SetResult(&page)
		if first {
			req.SetQueryParamsFromValues(params)
			first = false
		}
		resp, err := req.Get(next)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("launchpad: searchTasks: %s", resp.Status())
		}
		tasks = append(tasks, page.Entries...)
		next = page.NextCollectionLink
	}
	return tasks, nil
}

func (c *Client) Bug(ctx context.Context, id string) (*bug, error) {
	var b bug
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&b).
		Get("/bugs/" + id)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("launchpad: bug %s: %s", id, resp.Status())
	}
	return &b, nil
}

func (c *Client) BugMessages(ctx context.Context, id string) ([]message, error) {
	var messages []message
	next := "/bugs/" + id + "/messages"
	for next != "" {
		var page collection[message]
		resp, err := c.rest.R().SetContext(ctx).SetResult(&page).Get(next)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("launchpad: bug %s messages: %s", id, resp.Status())
		}
		messages = append(messages, page.Entries...)
		next = page.NextCollectionLink
	}
	return messages, nil
}
