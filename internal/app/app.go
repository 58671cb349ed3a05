package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"valuate_backend/internal/config"
	"valuate_backend/internal/controller"
	"valuate_backend/internal/middleware"
	"valuate_backend/internal/repository"
	"valuate_backend/internal/service"
	"valuate_backend/pkg/configwatcher"
	"valuate_backend/pkg/database"
	"valuate_backend/pkg/logger"
	"valuate_backend/pkg/monitoring"
	"valuate_backend/pkg/openai"
	"valuate_backend/pkg/security"
	"valuate_backend/pkg/tracing"

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
	valuator     *repository.ValuatorRepository
	valuation    *repository.ValuationRepository
	organization *repository.OrganizationRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	valuator     *service.ValuatorService
	valuation    *service.ValuationService
	organization *service.OrganizationService
}

type controllers struct {
	auth         *controller.AuthController
	valuator     *controller.ValuatorController
	organization *controller.OrganizationController
	upload       *controller.UploadController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		valuator:     repository.NewValuatorRepository(db),
		valuation:    repository.NewValuationRepository(db),
		organization: repository.NewOrganizationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.valuator = service.NewValuatorService(repos.valuator, repos.valuation)
	s.valuation = service.NewValuationService(openai.NewClient(cfg.AI), repos.valuator, repos.valuation, cfg.AI)
	s.organization = service.NewOrganizationService(repos.organization)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, cfg *config.Config) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		valuator:     controller.NewValuatorController(s.valuator, s.valuation),
		organization: controller.NewOrganizationController(s.organization),
		upload:       controller.NewUploadController(s.storage),
		health:       controller.NewHealthController(a.DB, a.Redis, cfg.AI, repos.valuator, repos.valuation),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis only backs the response cache; a dead redis degrades to
	// uncached responses.
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, response caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, repos, cfg)

	// Pick up completion credential or model changes without a restart.
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.valuation.UpdateAI(openai.NewClient(newCfg.AI), newCfg.AI)
		logger.Log.Info("completion client reloaded", zap.String("model", newCfg.AI.Model))
	})

	monitoring.Init()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("valuate-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		for _, callback := range app.configCallbacks {
			callback(newCfg)
		}
	})

	return app
}

func (a *App) cache() *middleware.ResponseCache {
	if a.Redis == nil {
		return nil
	}
	return middleware.NewResponseCache(a.Redis, time.Duration(a.Config.Cache.TTLSeconds)*time.Second)
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

	log.Println("Server exiting")
}
