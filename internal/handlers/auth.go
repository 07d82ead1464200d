package handlers

import (
	"net/http"
	"strings"

	"emberboard/internal/db"
	"emberboard/internal/middleware"
	"emberboard/internal/models"
	"emberboard/internal/services"
	"emberboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	captchaService *services.CaptchaService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		captchaService: services.NewCaptchaService(),
	}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Captcha  string `json:"captcha"`
}

// Captcha 注册前先取验证码，答案放会话里
func (h *AuthHandler) Captcha(c *gin.Context) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	if err := session.Save(); err != nil {
		Fail(c, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}
	OK(c, http.StatusOK, gin.H{"captcha": question})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	// Validate Captcha
	session := sessions.Default(c)
	expectedAnswer, ok := session.Get("captcha_answer").(int)
	if !ok || utils.StringToInt(req.Captcha) != expectedAnswer {
		Fail(c, http.StatusBadRequest, "BAD_CAPTCHA")
		return
	}
	// Clear captcha after use
	session.Delete("captcha_answer")
	session.Save()

	// Extract username from email
	parts := strings.Split(req.Email, "@")
	if len(parts) != 2 || parts[0] == "" {
		Fail(c, http.StatusBadRequest, "INVALID_EMAIL")
		return
	}
	username := parts[0]

	if len(req.Password) < 6 {
		Fail(c, http.StatusBadRequest, "PASSWORD_TOO_SHORT")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	user := models.User{
		Username: username,
		Email:    req.Email,
		Password: hash,
		Avatar:   utils.GetRandomEmoji(), // 随机 emoji 头像
	}
	if err := db.DB.Create(&user).Error; err != nil {
		Fail(c, http.StatusConflict, "EMAIL_TAKEN")
		return
	}

	OK(c, http.StatusOK, gin.H{"user_id": user.ID})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		Fail(c, http.StatusForbidden, "BAD_CREDENTIALS")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		Fail(c, http.StatusForbidden, "BAD_CREDENTIALS")
		return
	}

	// 登录时换新 CSRF token，前端写操作都要带上
	token := uuid.NewString()
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set(middleware.CsrfTokenKey, token)
	if err := session.Save(); err != nil {
		Fail(c, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	OK(c, http.StatusOK, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"sid":      token,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	OK(c, http.StatusOK, nil)
}

// Me 返回当前登录用户和 CSRF token，供前端初始化
func (h *AuthHandler) Me(c *gin.Context) {
	u, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		Fail(c, http.StatusForbidden, "AUTH_REQUIRED")
		return
	}
	user := u.(*models.User)

	session := sessions.Default(c)
	token, _ := session.Get(middleware.CsrfTokenKey).(string)

	unread := 0
	if count, ok := c.Get(middleware.UnreadCountKey); ok {
		unread = int(count.(int64))
	}

	OK(c, http.StatusOK, gin.H{
		"user":         user,
		"sid":          token,
		"unread_count": unread,
	})
}
