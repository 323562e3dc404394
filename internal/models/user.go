// Package models contains data structures for the application's domain models.
package models

import "time"

// Role values for User.Role. Anything other than RoleAdmin is an ordinary user.
const (
	RoleAdmin = "admin"
)

// User represents a registered member of the forum. Email is the unique
// lookup key; the numeric ID is used for admin promotion and deletion.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      string    `gorm:"default:''" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
