package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeReaction       NotificationType = "reaction"        // 单条即时通知
	NotificationTypeReactionDigest NotificationType = "reaction_digest" // 批量摘要通知
	NotificationTypeSystem         NotificationType = "system"
)

type Notification struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	UserID  uint             `gorm:"not null;index" json:"user_id"` // Receiver
	User    User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ActorID *uint            `gorm:"index" json:"actor_id"` // Sender (nil for digests)
	Actor   User             `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	Type    NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	PostID  uint             `gorm:"index" json:"post_id"`
	Emoji   string           `gorm:"size:191" json:"emoji"` // 即时通知记录具体 emoji
	// 摘要通知的聚合字段，ActorIDs 是点赞人 ID 升序逗号分隔
	ActorIDs      string    `gorm:"size:512" json:"actor_ids"`
	ActorCount    int       `gorm:"default:0" json:"actor_count"`
	ReactionCount int       `gorm:"default:0" json:"reaction_count"`
	IsRead        bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}
