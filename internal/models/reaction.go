package models

import (
	"time"
)

type Reaction struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	PostID uint `gorm:"not null;uniqueIndex:idx_reaction_post_user_emoji;index" json:"post_id"`
	// TopicID 冗余存储，方便按主题统计
	TopicID uint   `gorm:"not null;index" json:"topic_id"`
	UserID  uint   `gorm:"not null;uniqueIndex:idx_reaction_post_user_emoji" json:"user_id"`
	Emoji   string `gorm:"size:191;not null;uniqueIndex:idx_reaction_post_user_emoji" json:"emoji"`
	// Notified 由摘要任务置为 true，只会 false -> true，不会回退
	Notified  bool      `gorm:"default:false;index" json:"notified"`
	CreatedAt time.Time `json:"created_at"`
}

// 唯一索引 (post_id, user_id, emoji) 是防重复的真正保障，
// 应用层的查重只是提前返回，不能依赖它挡并发。

// ReactionCount 用于按 emoji 聚合计数的查询结果
type ReactionCount struct {
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

// ReactionUser 用于 "谁点了这个 emoji" 提示框
type ReactionUser struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}
