package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chickenlazy/taskadmin/internal/model"
)

// notificationPage is the paginated notification list envelope.
type notificationPage struct {
	Content []model.Notification `json:"content"`
}

// CountUnread fetches the scalar unread notification count for a user.
func (c *Client) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	path := "/api/notifications/user/" + url.PathEscape(userID) + "/count-unread"
	if err := c.Get(ctx, path, &count); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// ListNotifications fetches one page of a user's notifications in server
// order (newest first).
func (c *Client) ListNotifications(
	ctx context.Context,
	userID string,
	pageNo, pageSize int,
) ([]model.Notification, error) {
	q := url.Values{}
	q.Set("pageNo", fmt.Sprint(pageNo))
	q.Set("pageSize", fmt.Sprint(pageSize))

	var page notificationPage
	path := "/api/notifications/user/" + url.PathEscape(userID) + "?" + q.Encode()
	if err := c.Get(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return page.Content, nil
}

// MarkRead marks a single notification as read and returns the updated
// record.
func (c *Client) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	if err := c.Put(ctx, "/api/notifications/"+url.PathEscape(id)+"/read", nil, &n); err != nil {
		return nil, fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return &n, nil
}

// MarkAllRead marks every notification for a user as read.
func (c *Client) MarkAllRead(ctx context.Context, userID string) error {
	path := "/api/notifications/user/" + url.PathEscape(userID) + "/read-all"
	if err := c.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// DeleteNotification deletes a single notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if err := c.Delete(ctx, "/api/notifications/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return nil
}
