package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/suvadu/separation-api/api/swagger"
	"github.com/suvadu/separation-api/internal/handler"
	"github.com/suvadu/separation-api/internal/middleware"
	"github.com/suvadu/separation-api/internal/models"
	"github.com/suvadu/separation-api/internal/repository"
	"github.com/suvadu/separation-api/internal/service"
	"github.com/suvadu/separation-api/pkg/cache"
	"github.com/suvadu/separation-api/pkg/config"
	"github.com/suvadu/separation-api/pkg/database"
	"github.com/suvadu/separation-api/pkg/jobs"
	"github.com/suvadu/separation-api/pkg/logger"
	"github.com/suvadu/separation-api/pkg/mailer"
	corsmiddleware "github.com/suvadu/separation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/suvadu/separation-api/pkg/middleware/requestid"
	"github.com/suvadu/separation-api/pkg/storage"
)

// @title Suvadu Separation API
// @version 1.0.0
// @description Employee separation workflow service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	deptRepo := repository.NewDepartmentRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	sepRepo := repository.NewSeparationRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	signoffRepo := repository.NewSignoffRepository(db)
	handoverRepo := repository.NewHandoverRepository(db)
	emailLogRepo := repository.NewEmailLogRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "separation-api",
	})

	notificationSvc := service.NewNotificationService(
		mailer.NewSMTP(cfg.SMTP),
		emailLogRepo,
		userRepo,
		metricsSvc,
		logr,
		jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.MaxRetries,
			RetryDelay: cfg.Notifications.RetryDelay,
			Logger:     logr,
		},
		cfg.Notifications.FrontendURL,
		cfg.Notifications.Enabled,
	)
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	separationSvc := service.NewSeparationService(
		sepRepo, checklistRepo, signoffRepo, userRepo, templateRepo, deptRepo, handoverRepo,
		notificationSvc, cacheSvc, validate, logr,
	)

	calendarSvc := service.NewCalendarService(logr, cfg.Calendar.Enabled)
	handoverSvc := service.NewHandoverService(handoverRepo, sepRepo, signoffRepo, userRepo, calendarSvc, validate, logr)
	templateSvc := service.NewTemplateService(templateRepo, userRepo, validate, logr)
	deptSvc := service.NewDepartmentService(deptRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(sepRepo, signoffRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	var store *storage.LocalStorage
	var signer *storage.SignedURLSigner
	if cfg.Reports.Enabled {
		store, err = storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init report storage", zap.Error(err))
		}
		signer = storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	}
	reportSvc := service.NewReportService(sepRepo, userRepo, store, signer, logr, cfg.Reports.Enabled)
	reportSvc.StartCleanup(ctx, time.Hour, cfg.Reports.SignedURLTTL)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	deptHandler := handler.NewDepartmentHandler(deptSvc)
	templateHandler := handler.NewTemplateHandler(templateSvc)
	separationHandler := handler.NewSeparationHandler(separationSvc)
	handoverHandler := handler.NewHandoverHandler(handoverSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, authSvc, userRepo,
		authHandler, userHandler, deptHandler, templateHandler,
		separationHandler, handoverHandler, dashboardHandler, reportHandler, metricsHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown was not clean", zap.Error(err))
	}
}

func registerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	authSvc *service.AuthService,
	userRepo *repository.UserRepository,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	deptHandler *handler.DepartmentHandler,
	templateHandler *handler.TemplateHandler,
	separationHandler *handler.SeparationHandler,
	handoverHandler *handler.HandoverHandler,
	dashboardHandler *handler.DashboardHandler,
	reportHandler *handler.ReportHandler,
	metricsHandler *handler.MetricsHandler,
) {
	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authPriv := auth.Group("", middleware.JWT(authSvc))
	authPriv.POST("/logout", authHandler.Logout)
	authPriv.POST("/change-password", authHandler.ChangePassword)
	authPriv.GET("/me", authHandler.Me)

	// Download links carry their own signed token, so no session is required.
	api.GET("/reports/download/:token", reportHandler.Download)

	protected := api.Group("", middleware.JWT(authSvc))

	separationManager := middleware.RequireRoles(models.RoleSeparationManager)
	anyManager := middleware.RequireRoles(models.RoleDirectManager, models.RoleDepartmentManager, models.RoleSeparationManager)

	users := protected.Group("/users")
	users.GET("", separationManager, userHandler.List)
	users.POST("", separationManager, userHandler.Create)
	users.GET("/:id", middleware.RBAC("SELF", string(models.RoleSeparationManager)), userHandler.Get)
	users.GET("/:id/reports", middleware.RBAC("SELF", string(models.RoleSeparationManager)), userHandler.DirectReports)
	users.PATCH("/:id", separationManager, userHandler.Update)
	users.DELETE("/:id", separationManager, userHandler.Deactivate)

	depts := protected.Group("/departments")
	depts.GET("", deptHandler.List)
	depts.GET("/tree", deptHandler.Tree)
	depts.GET("/:id", deptHandler.Get)
	depts.POST("", separationManager, middleware.Audit(userRepo, models.AuditActionDeptChange, "department"), deptHandler.Create)
	depts.PUT("/:id", separationManager, middleware.Audit(userRepo, models.AuditActionDeptChange, "department"), deptHandler.Update)
	depts.DELETE("/:id", separationManager, middleware.Audit(userRepo, models.AuditActionDeptChange, "department"), deptHandler.Delete)

	templates := protected.Group("/templates")
	templates.GET("", templateHandler.List)
	templates.POST("", separationManager, templateHandler.Create)
	templates.PUT("/:id", separationManager, templateHandler.Update)
	templates.DELETE("/:id", separationManager, templateHandler.Deactivate)

	cases := protected.Group("/cases")
	cases.POST("", separationHandler.CreateCase)
	cases.GET("", separationHandler.ListCases)
	cases.GET("/:id", separationHandler.GetCase)
	cases.PATCH("/:id", separationHandler.UpdateCase)
	cases.POST("/:id/cancel", separationManager, separationHandler.CancelCase)
	cases.PUT("/:id/status", separationManager, separationHandler.OverrideStatus)
	cases.PATCH("/:id/checklist/:itemId", separationHandler.UpdateChecklistItem)
	cases.POST("/:id/checklist/submit", separationHandler.SubmitChecklist)
	cases.POST("/:id/signoffs", separationManager, separationHandler.AssignSignoff)
	cases.GET("/:id/handovers", handoverHandler.List)
	cases.POST("/:id/handovers", handoverHandler.Create)
	cases.PATCH("/:id/handovers/:handoverId", handoverHandler.Update)
	cases.DELETE("/:id/handovers/:handoverId", handoverHandler.Delete)

	signoffs := protected.Group("/signoffs")
	signoffs.GET("/pending", separationHandler.ListMySignoffs)
	signoffs.POST("/:signoffId", separationHandler.ProcessSignoff)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/employee", dashboardHandler.Employee)
	dashboard.GET("/manager", anyManager, dashboardHandler.Manager)

	reports := protected.Group("/reports")
	reports.POST("/cases", separationManager, reportHandler.CaseRegister)

	protected.GET("/metrics/snapshot", separationManager, metricsHandler.Snapshot)
}
