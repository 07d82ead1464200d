package services

import (
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"emberboard/internal/db"
	"emberboard/internal/models"
	"emberboard/internal/utils"

	"gorm.io/gorm"
)

// DigestService 定时把累积的未通知 reaction 合并成每帖一条摘要通知。
// 冷却窗口内的新 reaction 不会进入本轮摘要。
type DigestService struct {
	mu   sync.Mutex // 串行化执行，防止并发跑两轮重复通知
	mail *MailService
}

var (
	digestService *DigestService
	digestOnce    sync.Once
)

// GetDigestService 获取单例摘要服务
func GetDigestService() *DigestService {
	digestOnce.Do(func() {
		digestService = &DigestService{
			mail: NewMailService(),
		}
	})
	return digestService
}

// Start 启动后台循环，间隔由 DIGEST_INTERVAL_MINUTES 控制（默认 5 分钟）
func (s *DigestService) Start() {
	interval := utils.StringToInt(os.Getenv("DIGEST_INTERVAL_MINUTES"))
	if interval <= 0 {
		interval = 5
	}

	go func() {
		ticker := time.NewTicker(time.Duration(interval) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if err := s.Run(); err != nil {
				log.Printf("Reaction digest run failed: %v", err)
			}
		}
	}()
	log.Printf("Reaction digest service started, interval %d min", interval)
}

// pendingReaction 摘要扫描结果，LEFT JOIN 保证帖子已删的行也会被消费掉
type pendingReaction struct {
	ID       uint
	PostID   uint
	UserID   uint
	AuthorID uint
}

// digestGroup 单个帖子的聚合结果
type digestGroup struct {
	PostID   uint
	AuthorID uint
	Users    map[uint]bool
	Count    int
}

// actorIDs 点赞人 ID 升序逗号分隔，落到摘要通知上，渲染时可以还原具体是谁
func (g *digestGroup) actorIDs() string {
	ids := make([]uint, 0, len(g.Users))
	for id := range g.Users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// Run 执行一轮摘要：扫描、分组、通知、标记，全程一个事务。
// 标记只针对本轮扫描到的行 ID，期间新进的 reaction 不受影响。
func (s *DigestService) Run() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := AntispamMinutes()
	if window <= 0 {
		return nil
	}
	threshold := time.Now().Add(-time.Duration(window) * time.Minute)

	type digestMail struct {
		author models.User
		pid    string
		actors int
		count  int
	}
	var mails []digestMail

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var rows []pendingReaction
		if err := tx.Table("reactions").
			Select("reactions.id, reactions.post_id, reactions.user_id, posts.user_id AS author_id").
			Joins("LEFT JOIN posts ON posts.id = reactions.post_id").
			Where("reactions.notified = ? AND reactions.created_at < ?", false, threshold).
			Scan(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		// 按帖子分组
		groups := make(map[uint]*digestGroup)
		ids := make([]uint, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
			g, ok := groups[r.PostID]
			if !ok {
				g = &digestGroup{
					PostID:   r.PostID,
					AuthorID: r.AuthorID,
					Users:    make(map[uint]bool),
				}
				groups[r.PostID] = g
			}
			g.Users[r.UserID] = true
			g.Count++
		}

		for _, g := range groups {
			// 帖子已删或作者自己也在点赞列表里：不发通知，但行仍会被标记，
			// 避免这些行永远留在待处理队列里
			if g.AuthorID == 0 || g.Users[g.AuthorID] {
				continue
			}

			var author models.User
			if err := tx.First(&author, g.AuthorID).Error; err != nil {
				log.Printf("Digest: author %d not found for post %d: %v", g.AuthorID, g.PostID, err)
				continue
			}

			if author.NotifyBell {
				notification := models.Notification{
					UserID:        author.ID,
					Type:          models.NotificationTypeReactionDigest,
					PostID:        g.PostID,
					ActorIDs:      g.actorIDs(),
					ActorCount:    len(g.Users),
					ReactionCount: g.Count,
				}
				if err := tx.Create(&notification).Error; err != nil {
					// 单组失败不中断其余分组
					log.Printf("Digest: failed to create notification for post %d: %v", g.PostID, err)
				}
			}

			if author.NotifyEmailDigest {
				var post models.Post
				pid := ""
				if err := tx.First(&post, g.PostID).Error; err == nil {
					pid = post.Pid
				}
				// 邮件在事务提交后再发
				mails = append(mails, digestMail{
					author: author,
					pid:    pid,
					actors: len(g.Users),
					count:  g.Count,
				})
			}
		}

		// 只标记本轮读到的行
		return tx.Model(&models.Reaction{}).
			Where("id IN ?", ids).
			Update("notified", true).Error
	})
	if err != nil {
		return err
	}

	for _, m := range mails {
		s.mail.SendReactionDigest(m.author.Email, m.author.Username, m.pid, m.actors, m.count)
	}

	return nil
}
