package models

import (
	"time"
)

type Topic struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ForumID   uint      `gorm:"not null;index" json:"forum_id"`
	Forum     Forum     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"forum"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title     string    `gorm:"not null" json:"title"`
	Locked    bool      `gorm:"default:false" json:"locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
