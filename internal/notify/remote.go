package notify

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evtb/evtb/pkg/client"
	"github.com/evtb/evtb/pkg/domain"
)

// markAllConcurrency bounds the parallel PUTs issued by MarkAllAsRead.
const markAllConcurrency = 8

// Remote is a Service backed by the /api/Notification endpoints.
type Remote struct {
	c      *client.Client
	logger *zap.Logger
}

// NewRemote returns a Remote using c.
func NewRemote(c *client.Client, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{c: c, logger: logger}
}

func (r *Remote) Create(ctx context.Context, n domain.NewNotification) (*domain.Notification, error) {
	created, err := r.c.CreateNotification(ctx, n)
	if err != nil {
		r.logger.Warn("create notification failed", zap.Int64("user_id", n.UserID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Remote) UserNotifications(ctx context.Context, userID int64, page, pageSize int) (*domain.NotificationPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	return r.c.UserNotifications(ctx, userID, page, pageSize)
}

// UnreadCount counts unread notifications. Errors count as zero.
func (r *Remote) UnreadCount(ctx context.Context, userID int64) (int, error) {
	list, err := r.c.AllUserNotifications(ctx, userID)
	if err != nil {
		r.logger.Debug("unread count unavailable", zap.Int64("user_id", userID), zap.Error(err))
		return 0, nil
	}
	return len(unread(list)), nil
}

func (r *Remote) MarkAsRead(ctx context.Context, id int64) (*domain.Notification, error) {
	n, err := r.c.MarkNotificationRead(ctx, id)
	if client.IsStatus(err, http.StatusNotFound) {
		return nil, ErrNotFound
	}
	return n, err
}

// MarkAllAsRead lists the user's notifications and marks the unread ones in
// parallel.
func (r *Remote) MarkAllAsRead(ctx context.Context, userID int64) (int, error) {
	list, err := r.c.AllUserNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("notify.MarkAllAsRead: %w", err)
	}
	pending := unread(list)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(markAllConcurrency)
	for _, id := range pending {
		g.Go(func() error {
			_, err := r.c.MarkNotificationRead(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("notify.MarkAllAsRead: %w", err)
	}
	return len(pending), nil
}

// Delete removes a notification. A 404 reports false without an error.
func (r *Remote) Delete(ctx context.Context, id int64) (bool, error) {
	err := r.c.DeleteNotification(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case client.IsStatus(err, http.StatusNotFound):
		return false, nil
	default:
		return false, err
	}
}

func unread(list []domain.Notification) []int64 {
	var ids []int64
	for _, n := range list {
		if !n.IsRead {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
