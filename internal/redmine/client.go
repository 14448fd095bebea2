package redmine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dkrasnovs/timetrack/internal/common"
)

// ErrUnauthorized marks a credential rejection (HTTP 401), as opposed to a
// transport or server failure. The connect flow retries only on this.
var ErrUnauthorized = errors.New("unauthorized")

// pageLimit is the page size requested from list endpoints.
const pageLimit = 100

// API is the tracker surface the reconciliation engine depends on.
type API interface {
	CurrentUser(ctx context.Context) (*User, error)
	Projects(ctx context.Context) ([]Project, error)
	ProjectIssues(ctx context.Context, projectID int64) ([]Issue, error)
	MyIssues(ctx context.Context) ([]Issue, error)
	Issue(ctx context.Context, id int64) (*Issue, error)
	FindIssueBySubject(ctx context.Context, projectID int64, subject string) (*Issue, error)
	CreateIssue(ctx context.Context, projectID int64, subject, description string, estimatedHours float64) (*Issue, error)
	MyTimeEntries(ctx context.Context) ([]TimeEntry, error)
	CreateTimeEntry(ctx context.Context, issueID int64, spentOn string, hours float64, comments string) (*TimeEntry, error)
}

// Client implements API against a live endpoint.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewClient builds a client for baseURL authenticating every request with
// the given credentials.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrRemote, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s %s", ErrUnauthorized, method, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: %s %s: unexpected status %d", common.ErrRemote, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %w", common.ErrRemote, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// CurrentUser verifies the credentials and returns the account behind them.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.get(ctx, "/users/current.json", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Projects returns every project visible to the user, walking all pages.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var all []Project
	for offset := 0; ; {
		var page struct {
			Projects   []Project `json:"projects"`
			TotalCount int       `json:"total_count"`
		}
		q := url.Values{"offset": {strconv.Itoa(offset)}, "limit": {strconv.Itoa(pageLimit)}}
		if err := c.get(ctx, "/projects.json", q, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Projects...)
		offset += len(page.Projects)
		if len(page.Projects) == 0 || offset >= page.TotalCount {
			return all, nil
		}
	}
}

func (c *Client) issues(ctx context.Context, q url.Values) ([]Issue, error) {
	var all []Issue
	for offset := 0; ; {
		q.Set("offset", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(pageLimit))
		var page struct {
			Issues     []Issue `json:"issues"`
			TotalCount int     `json:"total_count"`
		}
		if err := c.get(ctx, "/issues.json", q, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Issues...)
		offset += len(page.Issues)
		if len(page.Issues) == 0 || offset >= page.TotalCount {
			return all, nil
		}
	}
}

// ProjectIssues returns the open issues of a project.
func (c *Client) ProjectIssues(ctx context.Context, projectID int64) ([]Issue, error) {
	return c.issues(ctx, url.Values{
		"project_id": {strconv.FormatInt(projectID, 10)},
		"status_id":  {"open"},
	})
}

// MyIssues returns every issue assigned to the authenticated user,
// regardless of status.
func (c *Client) MyIssues(ctx context.Context) ([]Issue, error) {
	return c.issues(ctx, url.Values{
		"assigned_to_id": {"me"},
		"status_id":      {"*"},
	})
}

// Issue fetches a single issue by id.
func (c *Client) Issue(ctx context.Context, id int64) (*Issue, error) {
	var resp struct {
		Issue Issue `json:"issue"`
	}
	path := fmt.Sprintf("/issues/%d.json", id)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Issue, nil
}

// FindIssueBySubject returns the issue in a project whose subject matches
// exactly, or nil when none does. Open and closed issues both count, so a
// resolved ticket keeps collecting follow-up entries instead of spawning a
// duplicate.
func (c *Client) FindIssueBySubject(ctx context.Context, projectID int64, subject string) (*Issue, error) {
	found, err := c.issues(ctx, url.Values{
		"project_id": {strconv.FormatInt(projectID, 10)},
		"status_id":  {"*"},
		"subject":    {subject},
	})
	if err != nil {
		return nil, err
	}
	for i := range found {
		if found[i].Subject == subject {
			return &found[i], nil
		}
	}
	return nil, nil
}

// CreateIssue opens a new issue in the project, carrying the description and
// the estimated hours of the entry that triggered it.
func (c *Client) CreateIssue(ctx context.Context, projectID int64, subject, description string, estimatedHours float64) (*Issue, error) {
	issue := map[string]any{
		"project_id": projectID,
		"subject":    subject,
	}
	if description != "" {
		issue["description"] = description
	}
	if estimatedHours > 0 {
		issue["estimated_hours"] = estimatedHours
	}
	body := map[string]any{"issue": issue}
	var resp struct {
		Issue Issue `json:"issue"`
	}
	if err := c.post(ctx, "/issues.json", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Issue, nil
}

// MyTimeEntries returns every time entry logged by the authenticated user,
// walking all pages.
func (c *Client) MyTimeEntries(ctx context.Context) ([]TimeEntry, error) {
	var all []TimeEntry
	for offset := 0; ; {
		var page struct {
			TimeEntries []TimeEntry `json:"time_entries"`
			TotalCount  int         `json:"total_count"`
		}
		q := url.Values{
			"user_id": {"me"},
			"offset":  {strconv.Itoa(offset)},
			"limit":   {strconv.Itoa(pageLimit)},
		}
		if err := c.get(ctx, "/time_entries.json", q, &page); err != nil {
			return nil, err
		}
		all = append(all, page.TimeEntries...)
		offset += len(page.TimeEntries)
		if len(page.TimeEntries) == 0 || offset >= page.TotalCount {
			return all, nil
		}
	}
}

// CreateTimeEntry logs hours against an issue on the given spent-on day
// ("2006-01-02"). An empty spentOn leaves the dating to the tracker.
func (c *Client) CreateTimeEntry(ctx context.Context, issueID int64, spentOn string, hours float64, comments string) (*TimeEntry, error) {
	entry := map[string]any{
		"issue_id": issueID,
		"hours":    hours,
		"comments": comments,
	}
	if spentOn != "" {
		entry["spent_on"] = spentOn
	}
	body := map[string]any{"time_entry": entry}
	var resp struct {
		TimeEntry TimeEntry `json:"time_entry"`
	}
	if err := c.post(ctx, "/time_entries.json", body, &resp); err != nil {
		return nil, err
	}
	return &resp.TimeEntry, nil
}
