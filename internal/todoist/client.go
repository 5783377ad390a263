// Package todoist implements the Todoist REST API calls the sorter needs:
// listing a project's tasks and sections, and moving a task into a section.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Task is a Todoist task. SectionID is empty for tasks that have not been
// placed in a section yet.
type Task struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	SectionID string `json:"section_id"`
}

// Section is a named group of tasks within a project.
type Section struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Config holds configuration for the Todoist client.
type Config struct {
	APIToken string
	BaseURL  string
	Timeout  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(apiToken string) Config {
	return Config{
		APIToken: apiToken,
		BaseURL:  "https://api.todoist.com/api/v1",
		Timeout:  30 * time.Second,
	}
}

// Client calls the Todoist REST API.
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Todoist client with default config.
func NewClient(apiToken string) *Client {
	return NewClientWithConfig(DefaultConfig(apiToken))
}

// NewClientWithConfig creates a Todoist client with custom config.
func NewClientWithConfig(config Config) *Client {
	return &Client{
		apiToken: config.APIToken,
		baseURL:  config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// taskPage mirrors the paginated list envelope of the v1 API.
type taskPage struct {
	Results    []Task `json:"results"`
	NextCursor string `json:"next_cursor"`
}

type sectionPage struct {
	Results    []Section `json:"results"`
	NextCursor string    `json:"next_cursor"`
}

// ListTasks returns every task in the project, draining all pages in order.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	var tasks []Task
	cursor := ""
	for {
		var page taskPage
		if err := c.getPage(ctx, "/tasks", projectID, cursor, &page); err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		tasks = append(tasks, page.Results...)
		if page.NextCursor == "" {
			return tasks, nil
		}
		cursor = page.NextCursor
	}
}

// ListSections returns every section in the project, draining all pages in order.
func (c *Client) ListSections(ctx context.Context, projectID string) ([]Section, error) {
	var sections []Section
	cursor := ""
	for {
		var page sectionPage
		if err := c.getPage(ctx, "/sections", projectID, cursor, &page); err != nil {
			return nil, fmt.Errorf("failed to list sections: %w", err)
		}
		sections = append(sections, page.Results...)
		if page.NextCursor == "" {
			return sections, nil
		}
		cursor = page.NextCursor
	}
}

// MoveTask moves one task into one section. Moving a task into the section it
// is already in is a no-op on the Todoist side, so the call is safe to repeat.
func (c *Client) MoveTask(ctx context.Context, taskID, sectionID string) error {
	if c.apiToken == "" {
		return fmt.Errorf("API token not configured")
	}

	reqBody := map[string]string{"section_id": sectionID}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/tasks/%s/move", c.baseURL, url.PathEscape(taskID))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// getPage fetches one page of a paginated list endpoint into out.
func (c *Client) getPage(ctx context.Context, path, projectID, cursor string, out interface{}) error {
	if c.apiToken == "" {
		return fmt.Errorf("API token not configured")
	}

	query := url.Values{}
	query.Set("project_id", projectID)
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
