package handlers

import (
	"net/http"

	"emberboard/internal/db"
	"emberboard/internal/middleware"
	"emberboard/internal/models"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var notifications []models.Notification
	db.DB.Preload("Actor").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications)

	OK(c, http.StatusOK, gin.H{
		"notifications": notifications,
	})
}

func (h *NotificationHandler) Read(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := c.Param("id")

	var notification models.Notification
	if err := db.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&notification).Error; err != nil {
		Fail(c, http.StatusNotFound, "NOT_FOUND")
		return
	}

	notification.IsRead = true
	db.DB.Save(&notification)

	OK(c, http.StatusOK, nil)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)

	OK(c, http.StatusOK, nil)
}
