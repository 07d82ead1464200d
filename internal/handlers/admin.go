package handlers

import (
	"net/http"
	"strconv"

	"emberboard/internal/db"
	"emberboard/internal/middleware"
	"emberboard/internal/models"
	"emberboard/internal/services"
	"emberboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// AdminRequired middleware helper
func (h *AdminHandler) checkAdmin(c *gin.Context) *models.User {
	u, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		return nil
	}
	user := u.(*models.User)
	if user.Role != "admin" {
		return nil
	}
	return user
}

// GetReactionSettings 当前的 reaction 配置
func (h *AdminHandler) GetReactionSettings(c *gin.Context) {
	if h.checkAdmin(c) == nil {
		Fail(c, http.StatusForbidden, "NOT_AUTHORIZED")
		return
	}

	OK(c, http.StatusOK, gin.H{
		models.SettingAntispamMinutes: services.AntispamMinutes(),
		models.SettingMaxPerPost:      services.MaxReactionsPerPost(),
		models.SettingMaxPerUser:      services.MaxReactionsPerUser(),
	})
}

// UpdateReactionSettings 更新 reaction 配置，立即生效（配置不缓存）
func (h *AdminHandler) UpdateReactionSettings(c *gin.Context) {
	if h.checkAdmin(c) == nil {
		Fail(c, http.StatusForbidden, "NOT_AUTHORIZED")
		return
	}

	var req map[string]int
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	allowed := map[string]bool{
		models.SettingAntispamMinutes: true,
		models.SettingMaxPerPost:      true,
		models.SettingMaxPerUser:      true,
	}
	for name, value := range req {
		if !allowed[name] || value < 0 {
			Fail(c, http.StatusBadRequest, "INVALID_SETTING")
			return
		}
		if err := services.SetSetting(name, strconv.Itoa(value)); err != nil {
			Fail(c, http.StatusInternalServerError, "SERVER_ERROR")
			return
		}
	}

	OK(c, http.StatusOK, nil)
}

// ToggleTopicLock 锁定/解锁主题
func (h *AdminHandler) ToggleTopicLock(c *gin.Context) {
	if h.checkAdmin(c) == nil {
		Fail(c, http.StatusForbidden, "NOT_AUTHORIZED")
		return
	}

	var topic models.Topic
	if err := db.DB.First(&topic, utils.StringToUint(c.Param("id"))).Error; err != nil {
		Fail(c, http.StatusNotFound, "INVALID_TOPIC")
		return
	}

	topic.Locked = !topic.Locked
	db.DB.Model(&topic).Update("locked", topic.Locked)
	// 锁定状态要立即生效，不等帖子元信息缓存过期
	services.InvalidateTopicPostInfo(topic.ID)

	OK(c, http.StatusOK, gin.H{"locked": topic.Locked})
}
