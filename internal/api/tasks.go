package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/chickenlazy/taskadmin/internal/model"
)

// subTaskPage is the paginated subtask list envelope. Some deployments
// return a bare array instead; ListUserSubTasks handles both.
type subTaskPage struct {
	Content []model.SubTask `json:"content"`
}

// GetTask fetches a single task, including its nested subtasks.
func (c *Client) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var t model.Task
	if err := c.Get(ctx, "/api/tasks/"+url.PathEscape(id), &t); err != nil {
		return nil, fmt.Errorf("fetching task %s: %w", id, err)
	}
	return &t, nil
}

// ListUserSubTasks fetches all subtasks assigned to a user. The endpoint
// returns either a bare JSON array or a {content: []} page envelope.
func (c *Client) ListUserSubTasks(ctx context.Context, userID string) ([]model.SubTask, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/api/subtasks/user/"+url.PathEscape(userID), &raw); err != nil {
		return nil, fmt.Errorf("listing subtasks for user %s: %w", userID, err)
	}

	var items []model.SubTask
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var page subTaskPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decoding subtask list: %w", err)
	}
	return page.Content, nil
}

// ToggleSubTask flips a subtask's completed flag and returns the updated
// record.
func (c *Client) ToggleSubTask(ctx context.Context, id string) (*model.SubTask, error) {
	var st model.SubTask
	if err := c.Patch(ctx, "/api/subtasks/"+url.PathEscape(id)+"/toggle", nil, &st); err != nil {
		return nil, fmt.Errorf("toggling subtask %s: %w", id, err)
	}
	return &st, nil
}
