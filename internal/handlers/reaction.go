package handlers

import (
	"net/http"

	"emberboard/internal/middleware"
	"emberboard/internal/models"
	"emberboard/internal/services"
	"emberboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type ReactionHandler struct{}

func NewReactionHandler() *ReactionHandler {
	return &ReactionHandler{}
}

type reactionRequest struct {
	Sid    string `json:"sid"`
	PostID uint   `json:"post_id"`
	Emoji  string `json:"emoji"`
	Action string `json:"action"`
}

// Handle 处理前端 reaction AJAX 请求，action: add / remove / get / get_users。
// 校验顺序：登录 -> CSRF -> action -> 帖子 -> emoji -> 锁定状态。
func (h *ReactionHandler) Handle(c *gin.Context) {
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, services.ErrInvalidAction.Code)
		return
	}

	mutating := req.Action == "add" || req.Action == "remove"

	// get 是公开读取，其余都要登录
	var currentUser *models.User
	if u, exists := c.Get(middleware.CheckUserKey); exists {
		currentUser = u.(*models.User)
	}
	if currentUser == nil && req.Action != "get" {
		Fail(c, http.StatusForbidden, services.ErrAuthRequired.Code)
		return
	}

	// 写操作必须带会话里的 CSRF token
	if mutating {
		session := sessions.Default(c)
		token, _ := session.Get(middleware.CsrfTokenKey).(string)
		if token == "" || req.Sid != token {
			Fail(c, http.StatusForbidden, services.ErrCsrfMismatch.Code)
			return
		}
	}

	switch req.Action {
	case "add", "remove", "get", "get_users":
	default:
		Fail(c, http.StatusBadRequest, services.ErrInvalidAction.Code)
		return
	}

	post, err := services.GetPostInfo(req.PostID)
	if err != nil {
		if err == services.ErrInvalidPost {
			Fail(c, http.StatusBadRequest, services.ErrInvalidPost.Code)
		} else {
			Fail(c, http.StatusInternalServerError, services.ErrServer.Code)
		}
		return
	}

	// get 不看 emoji，其余 action 都校验
	if req.Action != "get" && !utils.IsValidEmoji(req.Emoji) {
		Fail(c, http.StatusBadRequest, services.ErrInvalidEmoji.Code)
		return
	}

	// 主题或版块锁定时禁止写操作
	if mutating && (post.TopicLocked || post.ForumLocked) {
		Fail(c, http.StatusForbidden, services.ErrNotAuthorized.Code)
		return
	}

	switch req.Action {
	case "add":
		if err := services.AddReaction(currentUser, post, req.Emoji); err != nil {
			failReaction(c, err)
			return
		}
		h.respondWithCounts(c, currentUser, post, req.Emoji)
	case "remove":
		if err := services.RemoveReaction(currentUser, post, req.Emoji); err != nil {
			failReaction(c, err)
			return
		}
		h.respondWithCounts(c, currentUser, post, req.Emoji)
	case "get":
		counts, err := services.GetReactionCounts(post.ID)
		if err != nil {
			Fail(c, http.StatusInternalServerError, services.ErrServer.Code)
			return
		}
		OK(c, http.StatusOK, gin.H{
			"post_id":   post.ID,
			"reactions": counts,
		})
	case "get_users":
		users, err := services.GetReactionUsers(post.ID, req.Emoji)
		if err != nil {
			Fail(c, http.StatusInternalServerError, services.ErrServer.Code)
			return
		}
		OK(c, http.StatusOK, gin.H{
			"post_id": post.ID,
			"emoji":   req.Emoji,
			"users":   users,
		})
	}
}

// respondWithCounts add/remove 成功后的统一响应
func (h *ReactionHandler) respondWithCounts(c *gin.Context, user *models.User, post *services.PostInfo, emoji string) {
	counts, err := services.GetReactionCounts(post.ID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, services.ErrServer.Code)
		return
	}

	OK(c, http.StatusOK, gin.H{
		"post_id":      post.ID,
		"emoji":        emoji,
		"count":        counts[emoji],
		"user_reacted": services.UserReacted(post.ID, user.ID, emoji),
		"reactions":    counts,
	})
}

// failReaction 业务错误映射 HTTP 状态码
func failReaction(c *gin.Context, err error) {
	re, ok := err.(*services.ReactionError)
	if !ok {
		Fail(c, http.StatusInternalServerError, services.ErrServer.Code)
		return
	}

	switch re {
	case services.ErrAuthRequired, services.ErrCsrfMismatch, services.ErrNotAuthorized:
		Fail(c, http.StatusForbidden, re.Code)
	case services.ErrServer:
		Fail(c, http.StatusInternalServerError, re.Code)
	default:
		Fail(c, http.StatusBadRequest, re.Code)
	}
}
