package services

import (
	"log"

	"emberboard/internal/db"
	"emberboard/internal/models"
)

// NotifyReaction 添加 reaction 后的即时铃铛通知。
// 自己给自己的帖子点 emoji 不通知；所有失败只记日志。
func NotifyReaction(post *PostInfo, actor *models.User, emoji string) {
	if post.AuthorID == 0 || post.AuthorID == actor.ID {
		return
	}

	var author models.User
	if err := db.DB.First(&author, post.AuthorID).Error; err != nil {
		log.Printf("Reaction notify: author %d not found: %v", post.AuthorID, err)
		return
	}
	if !author.NotifyBell {
		return
	}

	actorID := actor.ID
	notification := models.Notification{
		UserID:  author.ID,
		ActorID: &actorID,
		Type:    models.NotificationTypeReaction,
		PostID:  post.ID,
		Emoji:   emoji,
	}
	if err := db.DB.Create(&notification).Error; err != nil {
		log.Printf("Reaction notify: failed to create notification for post %d: %v", post.ID, err)
	}
}
