package app

import (
	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/middleware"
	"lingua_learn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/users/me", c.auth.Me)

		// 会话与提交流水线
		authGroup.POST("/sessions", c.session.Start)
		authGroup.GET("/sessions", c.session.List)
		authGroup.GET("/sessions/:id", c.session.Get)
		authGroup.POST("/sessions/:id/submit", c.session.Submit)

		// 经验值 / 等级 / 连击
		authGroup.GET("/users/me/xp", c.progress.XP)
		authGroup.GET("/users/me/xp/daily", c.progress.DailyXP)
		authGroup.GET("/users/me/level", c.progress.Level)
		authGroup.GET("/users/me/streak", c.progress.Streak)
		authGroup.GET("/users/me/streak-calendar", c.progress.StreakCalendar)
		authGroup.GET("/users/me/daily-progress", c.progress.DailyProgress)
		authGroup.GET("/users/me/badges", c.progress.Badges)

		// 技能掌握度
		authGroup.GET("/mastery/overview", c.mastery.Overview)
		authGroup.GET("/mastery/sessions/:id", c.mastery.BySession)
		authGroup.GET("/mastery/:modality", c.mastery.ByModality)
		authGroup.GET("/mastery/:modality/days/:dayCode", c.mastery.ByDay)

		// 仪表盘
		authGroup.GET("/dashboard", c.dashboard.Summary)
		authGroup.GET("/dashboard/:modality", c.dashboard.Detail)

		// 练习内容
		authGroup.GET("/content/:modality", c.content.DayCodes)
		authGroup.GET("/content/:modality/:dayCode", c.content.DayContent)
		authGroup.POST("/content", c.content.Import)
	}
}
