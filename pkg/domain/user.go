package domain

import (
	"strings"
	"time"
)

// User is a marketplace account as returned by /api/User.
type User struct {
	ID        int64     `json:"userId"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role,omitempty"`
	RoleID    int       `json:"roleId,omitempty"`
	Status    string    `json:"accountStatus,omitempty"`
	CreatedAt time.Time `json:"createdDate,omitempty"`
}

// Profile holds the editable, display-oriented part of an account.
type Profile struct {
	UserID   int64  `json:"userId"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Address  string `json:"address,omitempty"`
	Role     string `json:"role,omitempty"`
}

// adminRoleID is the backend's numeric id for the admin role.
const adminRoleID = 1

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return strings.EqualFold(u.Role, "admin") || u.RoleID == adminRoleID
}

// DisplayName returns the full name, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
