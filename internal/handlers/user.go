package handlers

import (
	"net/http"

	"emberboard/internal/db"
	"emberboard/internal/middleware"
	"emberboard/internal/models"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// ShowSettings 当前用户的通知偏好
func (h *UserHandler) ShowSettings(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	OK(c, http.StatusOK, gin.H{
		"notify_bell":         user.NotifyBell,
		"notify_email_digest": user.NotifyEmailDigest,
	})
}

type settingsRequest struct {
	NotifyBell        *bool `json:"notify_bell"`
	NotifyEmailDigest *bool `json:"notify_email_digest"`
}

// UpdateSettings 更新通知偏好，只改请求里带的字段
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	updates := map[string]interface{}{}
	if req.NotifyBell != nil {
		updates["notify_bell"] = *req.NotifyBell
	}
	if req.NotifyEmailDigest != nil {
		updates["notify_email_digest"] = *req.NotifyEmailDigest
	}
	if len(updates) == 0 {
		OK(c, http.StatusOK, nil)
		return
	}

	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	OK(c, http.StatusOK, nil)
}

// Profile 用户主页 /u/:id
func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		Fail(c, http.StatusNotFound, "NOT_FOUND")
		return
	}

	var posts []models.Post
	db.DB.Preload("Topic").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&posts)
	fillReactionCounts(posts)

	OK(c, http.StatusOK, gin.H{
		"user":  user,
		"posts": posts,
	})
}
