package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"emberboard/internal/db"
	"emberboard/internal/models"
	"emberboard/internal/utils"

	"gorm.io/gorm"
)

// ReactionError 业务错误，Code 会原样返回给前端
type ReactionError struct {
	Code string
}

func (e *ReactionError) Error() string {
	return e.Code
}

var (
	ErrAuthRequired  = &ReactionError{"AUTH_REQUIRED"}
	ErrCsrfMismatch  = &ReactionError{"CSRF_MISMATCH"}
	ErrInvalidAction = &ReactionError{"INVALID_ACTION"}
	ErrInvalidPost   = &ReactionError{"INVALID_POST"}
	ErrInvalidEmoji  = &ReactionError{"INVALID_EMOJI"}
	ErrNotAuthorized = &ReactionError{"NOT_AUTHORIZED"}
	ErrDuplicate     = &ReactionError{"ALREADY_REACTED"}
	ErrPostQuota     = &ReactionError{"POST_REACTIONS_LIMIT"}
	ErrUserQuota     = &ReactionError{"USER_REACTIONS_LIMIT"}
	ErrServer        = &ReactionError{"SERVER_ERROR"}
)

// PostInfo 帖子元信息，reaction 校验路径的热点查询，带短 TTL 缓存
type PostInfo struct {
	ID          uint
	Pid         string
	TopicID     uint
	ForumID     uint
	AuthorID    uint
	TopicLocked bool
	ForumLocked bool
}

const postInfoTTL = 30 * time.Second

func postInfoKey(postID uint) string {
	return fmt.Sprintf("postinfo:%d", postID)
}

// GetPostInfo 查询帖子及其主题/版块的锁定状态
func GetPostInfo(postID uint) (*PostInfo, error) {
	cache := utils.GetCache()
	if cached := cache.Get(postInfoKey(postID)); cached != nil {
		return cached.(*PostInfo), nil
	}

	var info PostInfo
	err := db.DB.Table("posts").
		Select("posts.id, posts.pid, posts.topic_id, posts.forum_id, posts.user_id AS author_id, topics.locked AS topic_locked, forums.locked AS forum_locked").
		Joins("JOIN topics ON topics.id = posts.topic_id").
		Joins("JOIN forums ON forums.id = posts.forum_id").
		Where("posts.id = ?", postID).
		Scan(&info).Error
	if err != nil {
		return nil, err
	}
	if info.ID == 0 {
		return nil, ErrInvalidPost
	}

	cache.Set(postInfoKey(postID), &info, postInfoTTL)
	return &info, nil
}

// InvalidateTopicPostInfo 主题锁定状态变更后主动失效其下所有帖子的缓存，
// 不等 TTL 自然过期
func InvalidateTopicPostInfo(topicID uint) {
	var ids []uint
	if err := db.DB.Model(&models.Post{}).
		Where("topic_id = ?", topicID).
		Pluck("id", &ids).Error; err != nil {
		log.Printf("Failed to load post ids for topic %d: %v", topicID, err)
		return
	}
	cache := utils.GetCache()
	for _, id := range ids {
		cache.Delete(postInfoKey(id))
	}
}

// AddReaction 给帖子添加一个 reaction。
// 配额检查顺序：先帖子维度（不同 emoji 数），再用户维度（本人 reaction 数），
// 任一超限立即返回，不产生部分写入。
func AddReaction(user *models.User, post *PostInfo, emoji string) error {
	// 每帖不同 emoji 数上限
	var distinctCount int64
	if err := db.DB.Model(&models.Reaction{}).
		Where("post_id = ?", post.ID).
		Distinct("emoji").
		Count(&distinctCount).Error; err != nil {
		log.Printf("Failed to count distinct reactions on post %d: %v", post.ID, err)
		return ErrServer
	}
	if int(distinctCount) >= MaxReactionsPerPost() {
		// 已存在的 emoji 不算新增类型，可以继续加
		var sameEmoji int64
		if err := db.DB.Model(&models.Reaction{}).
			Where("post_id = ? AND emoji = ?", post.ID, emoji).
			Count(&sameEmoji).Error; err != nil {
			return ErrServer
		}
		if sameEmoji == 0 {
			return ErrPostQuota
		}
	}

	// 每人每帖 reaction 总数上限
	var userCount int64
	if err := db.DB.Model(&models.Reaction{}).
		Where("post_id = ? AND user_id = ?", post.ID, user.ID).
		Count(&userCount).Error; err != nil {
		return ErrServer
	}
	if int(userCount) >= MaxReactionsPerUser() {
		return ErrUserQuota
	}

	// 查重只是提前返回；唯一索引才是并发下的真正防线
	var existing int64
	if err := db.DB.Model(&models.Reaction{}).
		Where("post_id = ? AND user_id = ? AND emoji = ?", post.ID, user.ID, emoji).
		Count(&existing).Error; err != nil {
		return ErrServer
	}
	if existing > 0 {
		return ErrDuplicate
	}

	reaction := models.Reaction{
		PostID:  post.ID,
		TopicID: post.TopicID,
		UserID:  user.ID,
		Emoji:   emoji,
	}
	if err := db.DB.Create(&reaction).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return ErrDuplicate
		}
		log.Printf("Failed to create reaction on post %d: %v", post.ID, err)
		return ErrServer
	}

	// 即时通知尽力而为，失败只记日志，绝不影响本次请求
	NotifyReaction(post, user, emoji)

	return nil
}

// RemoveReaction 删除 reaction，幂等：没有匹配行也算成功
func RemoveReaction(user *models.User, post *PostInfo, emoji string) error {
	err := db.DB.
		Where("post_id = ? AND user_id = ? AND emoji = ?", post.ID, user.ID, emoji).
		Delete(&models.Reaction{}).Error
	if err != nil {
		log.Printf("Failed to remove reaction on post %d: %v", post.ID, err)
		return ErrServer
	}
	return nil
}

// GetReactionCounts 返回 emoji -> 数量 的映射
func GetReactionCounts(postID uint) (map[string]int64, error) {
	var rows []models.ReactionCount
	err := db.DB.Model(&models.Reaction{}).
		Select("emoji, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("emoji").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Emoji] = r.Count
	}
	return counts, nil
}

// GetReactionUsers 按点击时间升序返回某个 emoji 的用户列表
func GetReactionUsers(postID uint, emoji string) ([]models.ReactionUser, error) {
	var users []models.ReactionUser
	err := db.DB.Table("reactions").
		Select("users.id AS user_id, users.username").
		Joins("JOIN users ON users.id = reactions.user_id").
		Where("reactions.post_id = ? AND reactions.emoji = ?", postID, emoji).
		Order("reactions.created_at ASC").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UserReacted 当前用户是否已用该 emoji 点过这个帖子
func UserReacted(postID, userID uint, emoji string) bool {
	var count int64
	db.DB.Model(&models.Reaction{}).
		Where("post_id = ? AND user_id = ? AND emoji = ?", postID, userID, emoji).
		Count(&count)
	return count > 0
}

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 不同驱动的报错文案兜底
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
