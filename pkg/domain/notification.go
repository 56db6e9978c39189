package domain

import "time"

// Notification types emitted by the marketplace.
const (
	NotifyPostCreated        = "post_created"
	NotifyPostApproved       = "post_approved"
	NotifyPostRejected       = "post_rejected"
	NotifyPostSold           = "post_sold"
	NotifyMessageReceived    = "message_received"
	NotifySystemAnnouncement = "system_announcement"
	NotifyTest               = "test"
)

// Notification is a single message in a user's inbox.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"notificationType"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewNotification is the payload for creating a notification.
type NewNotification struct {
	UserID  int64  `json:"userId"`
	Type    string `json:"notificationType"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NotificationPage is one page of a user's notifications, newest first.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	TotalCount    int            `json:"totalCount"`
	Page          int            `json:"page"`
	PageSize      int            `json:"pageSize"`
	TotalPages    int            `json:"totalPages"`
}
