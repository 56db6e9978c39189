package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/evtb/evtb/pkg/domain"
)

// CreateNotification stores a notification for a user.
func (c *Client) CreateNotification(ctx context.Context, n domain.NewNotification) (*domain.Notification, error) {
	var created domain.Notification
	if err := c.post(ctx, "/api/Notification", n, &created); err != nil {
		return nil, fmt.Errorf("client.CreateNotification: %w", err)
	}
	return &created, nil
}

// UserNotifications returns one page of a user's notifications.
func (c *Client) UserNotifications(ctx context.Context, userID int64, page, pageSize int) (*domain.NotificationPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var p domain.NotificationPage
	if err := c.Do(ctx, idPath("/api/Notification/user", userID), RequestOptions{Query: params}, &p); err != nil {
		return nil, fmt.Errorf("client.UserNotifications: %w", err)
	}
	return &p, nil
}

// AllUserNotifications returns every notification of a user, unpaged.
func (c *Client) AllUserNotifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	var list []domain.Notification
	if err := c.get(ctx, idPath("/api/Notification/user", userID), &list); err != nil {
		return nil, fmt.Errorf("client.AllUserNotifications: %w", err)
	}
	return list, nil
}

// MarkNotificationRead flags a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	if err := c.put(ctx, idPath("/api/Notification", id), map[string]bool{"isRead": true}, &n); err != nil {
		return nil, fmt.Errorf("client.MarkNotificationRead: %w", err)
	}
	return &n, nil
}

// DeleteNotification removes a notification.
func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	if err := c.delete(ctx, idPath("/api/Notification", id)); err != nil {
		return fmt.Errorf("client.DeleteNotification: %w", err)
	}
	return nil
}
