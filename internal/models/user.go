package models

import (
	"time"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // Hash
	Avatar   string `gorm:"default:🙂" json:"avatar"`
	Role     string `gorm:"size:20;default:'user';not null" json:"role"` // user, admin

	// Notification preferences, consulted by the dispatch layer
	NotifyBell        bool `gorm:"default:true" json:"notify_bell"`
	NotifyEmailDigest bool `gorm:"default:true" json:"notify_email_digest"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt for hard delete
}
