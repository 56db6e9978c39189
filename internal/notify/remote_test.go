package notify_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/evtb/evtb/internal/mockapi"
	"github.com/evtb/evtb/internal/notify"
	"github.com/evtb/evtb/pkg/client"
	"github.com/evtb/evtb/pkg/domain"
)

func newRemote(t *testing.T) (*notify.Remote, *notify.MemoryStore) {
	t.Helper()
	store := notify.NewMemoryStore()
	srv := httptest.NewServer(mockapi.New(store, nil).Routes())
	t.Cleanup(srv.Close)
	return notify.NewRemote(client.New(srv.URL), nil), store
}

func TestRemoteRoundTrip(t *testing.T) {
	r, store := newRemote(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := r.Create(ctx, domain.NewNotification{UserID: 5, Type: domain.NotifyTest, Title: "hello"}); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}
	if got := len(store.All(5)); got != 4 {
		t.Fatalf("server holds %d notifications, want 4", got)
	}

	page, err := r.UserNotifications(ctx, 5, 1, 3)
	if err != nil {
		t.Fatalf("UserNotifications() error: %v", err)
	}
	if len(page.Notifications) != 3 || page.TotalCount != 4 || page.TotalPages != 2 {
		t.Errorf("page = %+v", page)
	}

	if c, _ := r.UnreadCount(ctx, 5); c != 4 {
		t.Errorf("UnreadCount() = %d, want 4", c)
	}

	first := page.Notifications[0].ID
	n, err := r.MarkAsRead(ctx, first)
	if err != nil || !n.IsRead {
		t.Fatalf("MarkAsRead() = %+v, %v", n, err)
	}

	marked, err := r.MarkAllAsRead(ctx, 5)
	if err != nil || marked != 3 {
		t.Fatalf("MarkAllAsRead() = %d, %v; want 3", marked, err)
	}
	if c, _ := r.UnreadCount(ctx, 5); c != 0 {
		t.Errorf("UnreadCount() after mark all = %d", c)
	}

	if ok, err := r.Delete(ctx, first); !ok || err != nil {
		t.Errorf("Delete() = %v, %v", ok, err)
	}
	if ok, err := r.Delete(ctx, first); ok || err != nil {
		t.Errorf("second Delete() = %v, %v; want false, nil", ok, err)
	}
	if _, err := r.MarkAsRead(ctx, first); !errors.Is(err, notify.ErrNotFound) {
		t.Errorf("MarkAsRead() on deleted = %v, want ErrNotFound", err)
	}
}

func TestRemoteCreateValidation(t *testing.T) {
	r, _ := newRemote(t)
	_, err := r.Create(context.Background(), domain.NewNotification{UserID: 1})
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("Create() error = %v, want 400", err)
	}
}

func TestRemoteUnreadCountDegradesToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := notify.NewRemote(client.New(srv.URL), nil)
	c, err := r.UnreadCount(context.Background(), 1)
	if c != 0 || err != nil {
		t.Errorf("UnreadCount() = %d, %v; want 0, nil", c, err)
	}
}

func TestRemoteMarkAllAsReadFailure(t *testing.T) {
	var puts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":1,"isRead":false},{"id":2,"isRead":true},{"id":3,"isRead":false}]`)) //nolint:errcheck
			return
		}
		if atomic.AddInt32(&puts, 1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":1,"isRead":true}`)) //nolint:errcheck
			return
		}
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := notify.NewRemote(client.New(srv.URL), nil)
	if _, err := r.MarkAllAsRead(context.Background(), 1); err == nil {
		t.Error("expected error when a mark fails")
	}
}
