package router

import (
	"emberboard/internal/handlers"
	"emberboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	reactionHandler := handlers.NewReactionHandler()
	userHandler := handlers.NewUserHandler()
	notificationHandler := handlers.NewNotificationHandler()
	adminHandler := handlers.NewAdminHandler()

	// 公共路由 (Public Routes)
	r.GET("/p/:pid", postHandler.Detail)      // 帖子详情
	r.GET("/t/:name", postHandler.ListByForum) // 版块下的帖子列表
	r.GET("/u/:id", userHandler.Profile)      // 用户主页

	r.GET("/captcha", authHandler.Captcha)  // 注册验证码
	r.POST("/signup", authHandler.Register) // 提交注册
	r.POST("/login", authHandler.Login)     // 提交登录
	r.GET("/logout", authHandler.Logout)    // 退出登录

	// reactions 端点自己区分读写权限，get 是公开的
	r.POST("/reactions", reactionHandler.Handle)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)
		authorized.POST("/submit", postHandler.Create)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
	}

	// Dashboard Routes
	dashboard := r.Group("/dashboard")
	dashboard.Use(middleware.AuthRequired())
	{
		dashboard.GET("/settings", userHandler.ShowSettings)
		dashboard.POST("/settings", userHandler.UpdateSettings)
	}

	// Admin Routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("/settings", adminHandler.GetReactionSettings)
		admin.POST("/settings", adminHandler.UpdateReactionSettings)
		admin.POST("/topics/:id/lock", adminHandler.ToggleTopicLock)
	}
}
