package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edupath_backend/internal/config"
	"edupath_backend/internal/controller"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/service"
	"edupath_backend/pkg/database"
	"edupath_backend/pkg/logger"
	"edupath_backend/pkg/monitoring"
	"edupath_backend/pkg/security"
	"edupath_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	learningPath *repository.LearningPathRepository
	subscription *repository.SubscriptionRepository
	usage        *repository.UsageRepository
	progress     *repository.ProgressRepository
	chat         *repository.ChatRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	content      *service.ContentService
	subscription *service.SubscriptionService
	quota        *service.QuotaService
	progress     *service.ProgressService
	access       *service.AccessService
	ai           *service.AIService
	chat         *service.ChatService
	quiz         *service.QuizService
}

type controllers struct {
	auth    *controller.AuthController
	content *controller.ContentController
	usage   *controller.UsageController
	payment *controller.PaymentController
	module  *controller.ModuleController
	chat    *controller.ChatController
	quiz    *controller.QuizController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
		subscription: repository.NewSubscriptionRepository(db),
		usage:        repository.NewUsageRepository(db),
		progress:     repository.NewProgressRepository(db),
		chat:         repository.NewChatRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.content = service.NewContentService(repos.learningPath, s.storage)
	s.subscription = service.NewSubscriptionService(repos.subscription, repos.user, rdb)
	s.quota = service.NewQuotaService(repos.usage, s.subscription)
	s.progress = service.NewProgressService(repos.progress, repos.learningPath)
	s.access = service.NewAccessService(repos.learningPath, repos.progress, s.subscription)
	s.ai = service.NewAIService(cfg.AI)
	s.chat = service.NewChatService(s.quota, s.subscription, s.ai, repos.chat, repos.learningPath)
	s.quiz = service.NewQuizService(s.quota, s.subscription, s.ai, s.progress, repos.learningPath, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		content: controller.NewContentController(s.content),
		usage:   controller.NewUsageController(s.quota),
		payment: controller.NewPaymentController(s.subscription),
		module:  controller.NewModuleController(s.access, s.progress, s.quiz),
		chat:    controller.NewChatController(s.chat),
		quiz:    controller.NewQuizController(s.quiz),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("entitlement-engine", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
