package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/controller"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/pkg/database"
	"lingua_learn_backend/pkg/logger"
	"lingua_learn_backend/pkg/monitoring"
	"lingua_learn_backend/pkg/security"
	"lingua_learn_backend/pkg/tracing"

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
	Loc             *time.Location
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      *repository.UserRepository
	session   *repository.SessionRepository
	answer    *repository.AnswerRepository
	analytics *repository.AnalyticsRepository
	xp        *repository.XPRepository
	streak    *repository.StreakRepository
	badge     *repository.BadgeRepository
	skill     *repository.SkillRepository
	content   *repository.ContentRepository
}

type services struct {
	auth      *service.AuthService
	xp        *service.XPService
	streak    *service.StreakService
	badge     *service.BadgeService
	skill     *service.SkillMasteryService
	dashboard *service.DashboardService
	session   *service.SessionService
	content   *service.ContentService
}

type controllers struct {
	auth      *controller.AuthController
	session   *controller.SessionController
	progress  *controller.ProgressController
	mastery   *controller.MasteryController
	dashboard *controller.DashboardController
	content   *controller.ContentController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// OnConfigReload 配置文件热更新入口，由外层 watcher 调用
func (a *App) OnConfigReload(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		session:   repository.NewSessionRepository(db),
		answer:    repository.NewAnswerRepository(db),
		analytics: repository.NewAnalyticsRepository(db),
		xp:        repository.NewXPRepository(db),
		streak:    repository.NewStreakRepository(db),
		badge:     repository.NewBadgeRepository(db),
		skill:     repository.NewSkillRepository(db),
		content:   repository.NewContentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.xp = service.NewXPService(repos.xp, cfg.Gamification, a.Loc)
	s.streak = service.NewStreakService(repos.streak, repos.session, repos.xp, a.Loc)
	s.badge = service.NewBadgeService(repos.badge, repos.session, repos.analytics, s.xp, cfg.Gamification.Badge, a.Loc)
	s.skill = service.NewSkillMasteryService(repos.skill, repos.answer, repos.session)
	s.dashboard = service.NewDashboardService(
		repos.analytics,
		repos.session,
		repos.answer,
		repos.xp,
		repos.streak,
		repos.badge,
		s.xp,
		cfg.Gamification,
		rdb,
		a.Loc,
	)
	s.session = service.NewSessionService(
		repos.session,
		repos.answer,
		repos.analytics,
		s.xp,
		s.streak,
		s.badge,
		s.skill,
		s.dashboard,
		a.Loc,
	)
	s.content = service.NewContentService(repos.content, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		session:   controller.NewSessionController(s.session),
		progress:  controller.NewProgressController(s.xp, s.streak, s.badge, s.dashboard, a.Loc),
		mastery:   controller.NewMasteryController(s.skill),
		dashboard: controller.NewDashboardController(s.dashboard),
		content:   controller.NewContentController(s.content),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		logger.Log.Fatal("Invalid timezone", zap.String("timezone", cfg.Server.Timezone), zap.Error(err))
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存不可用只降级，不阻塞启动
		logger.Log.Warn("Redis unavailable, caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Loc:    loc,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("lingua-progress", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
