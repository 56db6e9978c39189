package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evtb/evtb/pkg/domain"
)

// MemoryStore keeps notifications in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	byUser map[int64][]*domain.Notification
	nextID int64
	now    func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser: make(map[int64][]*domain.Notification),
		nextID: 1,
		now:    time.Now,
	}
}

// SetClock overrides time.Now. Tests only.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemoryStore) Create(_ context.Context, in domain.NewNotification) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.now()
	n := &domain.Notification{
		ID:        m.nextID,
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	m.nextID++
	m.byUser[in.UserID] = append(m.byUser[in.UserID], n)
	out := *n
	return &out, nil
}

// UserNotifications returns one page of the user's notifications, newest first.
// Pages are 1-based.
func (m *MemoryStore) UserNotifications(_ context.Context, userID int64, page, pageSize int) (*domain.NotificationPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	m.mu.Lock()
	all := make([]domain.Notification, 0, len(m.byUser[userID]))
	for _, n := range m.byUser[userID] {
		all = append(all, *n)
	}
	m.mu.Unlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := len(all)
	if page-1 < (len(all)+pageSize-1)/pageSize {
		start = (page - 1) * pageSize
	}
	end := start + min(pageSize, len(all)-start)
	return &domain.NotificationPage{
		Notifications: all[start:end],
		TotalCount:    len(all),
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages(len(all), pageSize),
	}, nil
}

// All returns every notification of a user in creation order.
func (m *MemoryStore) All(userID int64) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, 0, len(m.byUser[userID]))
	for _, n := range m.byUser[userID] {
		out = append(out, *n)
	}
	return out
}

func (m *MemoryStore) UnreadCount(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.byUser[userID] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) MarkAsRead(_ context.Context, id int64) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.find(id)
	if n == nil {
		return nil, ErrNotFound
	}
	n.IsRead = true
	n.UpdatedAt = m.now()
	out := *n
	return &out, nil
}

// MarkAllAsRead flips every unread notification of the user and returns how
// many it flipped.
func (m *MemoryStore) MarkAllAsRead(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := m.now()
	count := 0
	for _, n := range m.byUser[userID] {
		if !n.IsRead {
			n.IsRead = true
			n.UpdatedAt = ts
			count++
		}
	}
	return count, nil
}

// Delete removes a notification. It reports false when the id is unknown.
func (m *MemoryStore) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for user, list := range m.byUser {
		for i, n := range list {
			if n.ID == id {
				m.byUser[user] = append(list[:i], list[i+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

// Reset drops all notifications and restarts ids at 1.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser = make(map[int64][]*domain.Notification)
	m.nextID = 1
}

func (m *MemoryStore) find(id int64) *domain.Notification {
	for _, list := range m.byUser {
		for _, n := range list {
			if n.ID == id {
				return n
			}
		}
	}
	return nil
}
