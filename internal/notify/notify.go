// Package notify delivers marketplace notifications, either through the
// backend or through an in-process store when the backend lacks the endpoints.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/evtb/evtb/pkg/client"
	"github.com/evtb/evtb/pkg/domain"
)

// ErrNotFound is returned when a notification id does not exist.
var ErrNotFound = errors.New("notification not found")

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 10

// MaxPageSize caps the page size a caller may ask for.
const MaxPageSize = 100

// Service is the notification API.
type Service interface {
	Create(ctx context.Context, n domain.NewNotification) (*domain.Notification, error)
	UserNotifications(ctx context.Context, userID int64, page, pageSize int) (*domain.NotificationPage, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkAsRead(ctx context.Context, id int64) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// shared backs every mock Service handed out by New, so notifications created
// in one place show up everywhere in the process.
var shared = NewMemoryStore()

// New picks the in-memory store when useMock is set, otherwise the backend.
func New(useMock bool, c *client.Client, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if useMock {
		logger.Debug("using in-memory notifications")
		return shared
	}
	return NewRemote(c, logger)
}

// NotifyPostCreated tells a seller their listing is awaiting review.
func NotifyPostCreated(ctx context.Context, svc Service, userID int64, postTitle string) bool {
	return send(ctx, svc, domain.NewNotification{
		UserID:  userID,
		Type:    domain.NotifyPostCreated,
		Title:   "📝 Bài đăng đã được tạo",
		Content: fmt.Sprintf("Bài đăng %q đã được tạo thành công và đang chờ duyệt.", postTitle),
	})
}

// NotifyPostApproved tells a seller their listing went live.
func NotifyPostApproved(ctx context.Context, svc Service, userID int64, postTitle string) bool {
	return send(ctx, svc, domain.NewNotification{
		UserID:  userID,
		Type:    domain.NotifyPostApproved,
		Title:   "✅ Bài đăng đã được duyệt",
		Content: fmt.Sprintf("Bài đăng %q đã được admin duyệt và hiển thị trên trang chủ.", postTitle),
	})
}

// NotifyPostRejected tells a seller their listing was turned down.
func NotifyPostRejected(ctx context.Context, svc Service, userID int64, postTitle string) bool {
	return send(ctx, svc, domain.NewNotification{
		UserID:  userID,
		Type:    domain.NotifyPostRejected,
		Title:   "❌ Bài đăng bị từ chối",
		Content: fmt.Sprintf("Bài đăng %q đã bị admin từ chối. Vui lòng kiểm tra và chỉnh sửa.", postTitle),
	})
}

func send(ctx context.Context, svc Service, n domain.NewNotification) bool {
	_, err := svc.Create(ctx, n)
	return err == nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func totalPages(total, pageSize int) int {
	return (total + pageSize - 1) / pageSize
}
