package app

import (
	"edupath_backend/docs"
	"edupath_backend/internal/config"
	"edupath_backend/internal/middleware"
	"edupath_backend/internal/model"

	"edupath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理端内容维护接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 路径结构允许游客预览
		public.GET("/paths", middleware.TryAuthMiddleware(a.Config), c.content.ListPaths)
		public.GET("/paths/:id", middleware.TryAuthMiddleware(a.Config), c.content.GetPath)
	}

	// 支付回调由网关侧签名校验，不走用户认证
	webhook := router.Group("/api/webhook")
	{
		webhook.POST("/payments", c.payment.PaymentWebhook)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 配额与订阅
	rg.GET("/usage/chapter-status", c.usage.ChapterStatus)
	rg.GET("/payments/subscription-status", c.payment.SubscriptionStatus)

	// 模块解锁与进度
	rg.GET("/modules/check-access", c.module.CheckAccess)
	rg.POST("/modules/quiz-score", c.module.RecordQuizScore)
	rg.GET("/modules/progress", c.module.ListProgress)
	rg.POST("/modules/quiz-submit", c.module.SubmitQuiz)

	// AI 对话
	rg.POST("/chat", c.chat.Send)
	rg.GET("/chat/history", c.chat.History)

	// 出题
	rg.POST("/webhook/generate-mcq", c.quiz.GenerateMcq)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Teacher), middleware.ActivityMiddleware(repos.user))
	{
		admin.POST("/paths", c.content.CreatePath)
		admin.POST("/modules", c.content.CreateModule)
		admin.POST("/submodules", c.content.CreateSubmodule)
		admin.POST("/chapters", c.content.CreateChapter)
		admin.POST("/chapters/:id/video", c.content.UploadChapterVideo)
	}
}
