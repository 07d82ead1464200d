package handlers

import (
	"net/http"
	"strings"

	"emberboard/internal/db"
	"emberboard/internal/middleware"
	"emberboard/internal/models"
	"emberboard/internal/services"
	"emberboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

type submitRequest struct {
	ForumID uint   `json:"forum_id"`
	TopicID uint   `json:"topic_id"` // 0 = 新开主题
	Title   string `json:"title"`
	Content string `json:"content"` // markdown
}

// Create 发帖：topic_id 为 0 时新建主题，否则在现有主题下回帖
func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "BAD_REQUEST")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		Fail(c, http.StatusBadRequest, "EMPTY_CONTENT")
		return
	}

	var topic models.Topic
	if req.TopicID == 0 {
		if strings.TrimSpace(req.Title) == "" {
			Fail(c, http.StatusBadRequest, "EMPTY_TITLE")
			return
		}
		var forum models.Forum
		if err := db.DB.First(&forum, req.ForumID).Error; err != nil {
			Fail(c, http.StatusBadRequest, "INVALID_FORUM")
			return
		}
		if forum.Locked {
			Fail(c, http.StatusForbidden, "NOT_AUTHORIZED")
			return
		}
		topic = models.Topic{
			ForumID: forum.ID,
			UserID:  user.ID,
			Title:   req.Title,
		}
		if err := db.DB.Create(&topic).Error; err != nil {
			Fail(c, http.StatusInternalServerError, "SERVER_ERROR")
			return
		}
	} else {
		if err := db.DB.Preload("Forum").First(&topic, req.TopicID).Error; err != nil {
			Fail(c, http.StatusBadRequest, "INVALID_TOPIC")
			return
		}
		if topic.Locked || topic.Forum.Locked {
			Fail(c, http.StatusForbidden, "NOT_AUTHORIZED")
			return
		}
	}

	post := models.Post{
		Pid:     utils.RandString(8),
		TopicID: topic.ID,
		ForumID: topic.ForumID,
		UserID:  user.ID,
		Content: string(utils.RenderMarkdown(req.Content)),
	}
	if err := db.DB.Create(&post).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	OK(c, http.StatusOK, gin.H{
		"post_id":  post.ID,
		"pid":      post.Pid,
		"topic_id": topic.ID,
	})
}

// Detail 帖子详情，带 reaction 聚合计数
func (h *PostHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Preload("User").Preload("Topic").First(&post, "pid = ?", pid).Error; err != nil {
		Fail(c, http.StatusNotFound, "INVALID_POST")
		return
	}

	counts, err := services.GetReactionCounts(post.ID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	OK(c, http.StatusOK, gin.H{
		"post":      post,
		"reactions": counts,
	})
}

// ListByForum 版块下的帖子列表
func (h *PostHandler) ListByForum(c *gin.Context) {
	name := c.Param("name")

	var forum models.Forum
	if err := db.DB.First(&forum, "name = ?", name).Error; err != nil {
		Fail(c, http.StatusNotFound, "INVALID_FORUM")
		return
	}

	var posts []models.Post
	db.DB.Preload("User").Preload("Topic").
		Where("forum_id = ?", forum.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&posts)
	fillReactionCounts(posts)

	OK(c, http.StatusOK, gin.H{
		"forum": forum,
		"posts": posts,
	})
}

// fillReactionCounts 批量填充帖子的 reaction 总数，避免 N+1
func fillReactionCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	type row struct {
		PostID uint
		Count  int
	}
	var rows []row
	db.DB.Model(&models.Reaction{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows)

	countMap := make(map[uint]int, len(rows))
	for _, r := range rows {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].ReactionCount = countMap[posts[i].ID]
	}
}
