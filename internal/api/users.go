package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chickenlazy/taskadmin/internal/model"
)

// UserPayload is the request body for user create/update calls. The form
// engine builds it from its field map, so optional fields are simply absent.
type UserPayload map[string]string

// uniqueResponse is the body of a uniqueness check.
type uniqueResponse struct {
	Unique bool `json:"unique"`
}

// userPage is the paginated user list envelope.
type userPage struct {
	Content []model.User `json:"content"`
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := c.Get(ctx, "/api/users/"+url.PathEscape(id), &u); err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", id, err)
	}
	return &u, nil
}

// ListUsers fetches a page of users for the admin list view.
func (c *Client) ListUsers(ctx context.Context, pageNo, pageSize int) ([]model.User, error) {
	q := url.Values{}
	q.Set("pageNo", fmt.Sprint(pageNo))
	q.Set("pageSize", fmt.Sprint(pageSize))

	var page userPage
	if err := c.Get(ctx, "/api/users?"+q.Encode(), &page); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return page.Content, nil
}

// CheckUnique asks the server whether value is available for field
// ("username" or "email"). excludeID, when non-empty, excludes an existing
// record from the collision check so editing a user does not collide with
// itself.
func (c *Client) CheckUnique(ctx context.Context, field, value, excludeID string) (bool, error) {
	q := url.Values{}
	q.Set("field", field)
	q.Set("value", value)
	if excludeID != "" {
		q.Set("excludeId", excludeID)
	}

	var resp uniqueResponse
	if err := c.Get(ctx, "/api/users/check-unique?"+q.Encode(), &resp); err != nil {
		return false, fmt.Errorf("checking %s uniqueness: %w", field, err)
	}
	return resp.Unique, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, payload UserPayload) (*model.User, error) {
	var u model.User
	if err := c.Post(ctx, "/api/auth/register", payload, &u); err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}
	return &u, nil
}

// UpdateUser updates an existing user by id.
func (c *Client) UpdateUser(ctx context.Context, id string, payload UserPayload) (*model.User, error) {
	var u model.User
	if err := c.Put(ctx, "/api/users/"+url.PathEscape(id), payload, &u); err != nil {
		return nil, fmt.Errorf("updating user %s: %w", id, err)
	}
	return &u, nil
}
