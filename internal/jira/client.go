// Package jira is a typed client for the Jira Cloud REST v3 API,
// limited to what the rewriter needs: list projects, list issues for
// a project, and update an issue's summary and rich description.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storyline-io/storyline/pkg/story"
)

// Client talks to one Jira Cloud site using basic auth (email + API
// token).
type Client struct {
	client   *http.Client
	baseURL  string
	email    string
	apiToken string
}

// Option configures a Client.
type Option func(*Client)

// WithJiraBaseURL overrides the derived https://<domain> base URL.
func WithJiraBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithJiraHTTPClient sets a custom HTTP client.
func WithJiraHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a client for the given Jira domain, e.g.
// "example.atlassian.net".
func NewClient(domain, email, apiToken string, opts ...Option) *Client {
	c := &Client{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  "https://" + domain,
		email:    email,
		apiToken: apiToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListProjects fetches all projects visible to the credentials.
func (c *Client) ListProjects(ctx context.Context) ([]story.Project, error) {
	var projects []story.Project
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/project", nil, &projects); err != nil {
		return nil, fmt.Errorf("jira: list projects: %w", err)
	}
	return projects, nil
}

// ListIssues fetches the issues of a project, newest first. The
// description is reduced to the first text run of the rich document's
// first block; issues without one get an empty description.
func (c *Client) ListIssues(ctx context.Context, projectKey string) ([]story.Ticket, error) {
	req := searchRequest{
		JQL:    fmt.Sprintf("project = %s ORDER BY created DESC", projectKey),
		Fields: []string{"summary", "description"},
	}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/search", req, &resp); err != nil {
		return nil, fmt.Errorf("jira: search issues: %w", err)
	}

	tickets := make([]story.Ticket, 0, len(resp.Issues))
	for _, issue := range resp.Issues {
		tickets = append(tickets, story.Ticket{
			Key:         issue.Key,
			Summary:     issue.Fields.Summary,
			Description: issue.Fields.Description.PlainText(),
		})
	}
	return tickets, nil
}

// UpdateIssue replaces an issue's summary and description.
func (c *Client) UpdateIssue(ctx context.Context, key, summary string, doc Document) error {
	req := updateRequest{}
	req.Fields.Summary = summary
	req.Fields.Description = doc

	if err := c.do(ctx, http.MethodPut, "/rest/api/3/issue/"+key, req, nil); err != nil {
		return fmt.Errorf("jira: update issue %s: %w", key, err)
	}
	return nil
}

// do performs one authenticated JSON round trip. out may be nil for
// responses without a useful body (issue updates return 204).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// --- Jira wire format types ---

type searchRequest struct {
	JQL    string   `json:"jql"`
	Fields []string `json:"fields"`
}

type searchResponse struct {
	Issues []searchIssue `json:"issues"`
}

type searchIssue struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Summary     string   `json:"summary"`
	Description Document `json:"description"`
}

type updateRequest struct {
	Fields struct {
		Summary     string   `json:"summary"`
		Description Document `json:"description"`
	} `json:"fields"`
}
