package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
)

const todoistBaseURL = "https://api.todoist.com"

// TodoistClient fetches tasks from the Todoist REST API. It implements the
// task-provider side of the weekly review.
type TodoistClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewTodoistClient creates a Todoist client over an authenticated HTTP
// client (see HTTPClient).
func NewTodoistClient(httpClient *http.Client) *TodoistClient {
	return &TodoistClient{httpClient: httpClient, baseURL: todoistBaseURL}
}

// todoistTask is the REST v2 task shape.
type todoistTask struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Due     *struct {
		Date string `json:"date"`
	} `json:"due"`
}

// todoistCompletedItem is the sync v9 completed item shape.
type todoistCompletedItem struct {
	TaskID      string `json:"task_id"`
	Content     string `json:"content"`
	CompletedAt string `json:"completed_at"`
}

// OpenTasks returns the user's active tasks.
func (c *TodoistClient) OpenTasks(ctx context.Context) ([]models.Task, error) {
	body, err := c.get(ctx, "/rest/v2/tasks")
	if err != nil {
		return nil, fmt.Errorf("fetching todoist tasks: %w", err)
	}

	var raw []todoistTask
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding todoist tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(raw))
	for _, t := range raw {
		task := models.Task{ID: t.ID, Content: t.Content}
		if t.Due != nil {
			if due, err := time.Parse("2006-01-02", t.Due.Date); err == nil {
				task.Due = &due
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// CompletedSince returns tasks completed at or after since.
func (c *TodoistClient) CompletedSince(ctx context.Context, since time.Time) ([]models.Task, error) {
	path := "/sync/v9/completed/get_all?since=" + url.QueryEscape(since.UTC().Format("2006-01-02T15:04:05"))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching completed todoist tasks: %w", err)
	}

	var raw struct {
		Items []todoistCompletedItem `json:"items"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding completed todoist tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(raw.Items))
	for _, item := range raw.Items {
		task := models.Task{ID: item.TaskID, Content: item.Content}
		if done, err := time.Parse(time.RFC3339, item.CompletedAt); err == nil {
			task.CompletedAt = &done
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (c *TodoistClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("todoist request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("todoist API error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
