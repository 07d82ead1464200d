package models

import (
	"time"
)

type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Pid     string `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	TopicID uint   `gorm:"not null;index" json:"topic_id"`
	Topic   Topic  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"topic"`
	// ForumID 冗余存储，方便按版块查询
	ForumID   uint      `gorm:"not null;index" json:"forum_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Content   string    `gorm:"type:text" json:"content"` // sanitized HTML
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	ReactionCount int `gorm:"-" json:"reaction_count"`
}
