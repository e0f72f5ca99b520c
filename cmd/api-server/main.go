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

	_ "github.com/duvallb/records-request-api/api/swagger"
	"github.com/duvallb/records-request-api/internal/handler"
	"github.com/duvallb/records-request-api/internal/middleware"
	"github.com/duvallb/records-request-api/internal/models"
	"github.com/duvallb/records-request-api/internal/repository"
	"github.com/duvallb/records-request-api/internal/service"
	"github.com/duvallb/records-request-api/pkg/cache"
	"github.com/duvallb/records-request-api/pkg/config"
	"github.com/duvallb/records-request-api/pkg/database"
	"github.com/duvallb/records-request-api/pkg/jobs"
	"github.com/duvallb/records-request-api/pkg/logger"
	"github.com/duvallb/records-request-api/pkg/mailer"
	corsmiddleware "github.com/duvallb/records-request-api/pkg/middleware/cors"
	reqidmiddleware "github.com/duvallb/records-request-api/pkg/middleware/requestid"
	"github.com/duvallb/records-request-api/pkg/storage"
)

// @title Records Request Portal API
// @version 1.0.0
// @description Public records request portal for a police department
// @BasePath /
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// The portal works without Redis; dashboards just recompute every time.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard caching disabled", zap.Error(err))
		redisClient = nil
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	fileRepo := repository.NewFileRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	templateRepo := repository.NewEmailTemplateRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "records-request-api",
	})

	emailSvc := service.NewEmailService(templateRepo, mailer.New(cfg.SMTP, logr), validate, metricsSvc, logr, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})

	requestSvc := service.NewRequestService(service.RequestServiceDeps{
		Repo:          requestRepo,
		Users:         userRepo,
		Files:         fileRepo,
		Messages:      messageRepo,
		Notifications: notificationRepo,
		Emails:        emailSvc,
		Blobs:         uploads,
		Cache:         cacheSvc,
		Metrics:       metricsSvc,
		Validator:     validate,
		Logger:        logr,
	})

	fileSvc := service.NewFileService(fileRepo, requestRepo, uploads, signer, userRepo, metricsSvc, cfg.Uploads.MaxFileSizeBytes, logr)
	messageSvc := service.NewMessageService(messageRepo, requestRepo, notificationRepo, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, requestRepo, userRepo, cacheSvc, metricsSvc, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(requestRepo, fileRepo, messageRepo, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emailSvc.Start(ctx)
	defer emailSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	fileHandler := handler.NewFileHandler(fileSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	dashboardHandler := handler.NewDashboardHandler(analyticsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	userHandler := handler.NewUserHandler(userSvc)
	templateHandler := handler.NewEmailTemplateHandler(emailSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		session := auth.Group("", middleware.JWT(authSvc))
		session.POST("/logout", authHandler.Logout)
		session.POST("/change-password", authHandler.ChangePassword)
		session.GET("/me", authHandler.Me)
	}

	// Downloads authenticate with the signed token; no session required so
	// emailed links keep working.
	api.GET("/files/:id/download", fileHandler.Download)

	protected := api.Group("", middleware.JWT(authSvc))
	{
		protected.POST("/requests", requestHandler.Create)
		protected.GET("/requests", requestHandler.List)
		protected.GET("/requests/assigned", middleware.RequireRoles(models.RoleStaff, models.RoleAdmin), requestHandler.ListAssigned)
		protected.GET("/requests/:id", requestHandler.Get)
		protected.PUT("/requests/:id", requestHandler.Update)
		protected.PUT("/requests/:id/assign", middleware.RequireRoles(models.RoleAdmin), requestHandler.Assign)
		protected.PUT("/requests/:id/status", middleware.RequireRoles(models.RoleStaff, models.RoleAdmin), requestHandler.UpdateStatus)

		protected.POST("/requests/:id/messages", messageHandler.Post)
		protected.GET("/requests/:id/messages", messageHandler.List)
		protected.POST("/requests/:id/files", fileHandler.Upload)
		protected.GET("/requests/:id/files", fileHandler.List)

		protected.GET("/notifications", notificationHandler.List)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)

		protected.GET("/dashboard/stats", dashboardHandler.Stats)
		protected.GET("/analytics/dashboard", middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Analytics)

		protected.GET("/export/requests/csv", middleware.RequireRoles(models.RoleAdmin), exportHandler.RequestsCSV)
		protected.GET("/export/requests/:id/pdf", exportHandler.RequestPDF)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/users", middleware.Audit(userRepo, models.AuditActionUserCreate, "user"), userHandler.Create)
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.PUT("/users/:id/role", userHandler.UpdateRole)
		admin.PUT("/users/:id/email", userHandler.UpdateEmail)
		admin.DELETE("/users/:id", userHandler.Deactivate)
		admin.GET("/staff", userHandler.ListStaff)

		admin.GET("/unassigned-requests", requestHandler.Unassigned)
		admin.PUT("/requests/:id/cancel", requestHandler.Cancel)
		admin.DELETE("/requests/:id", requestHandler.Delete)

		admin.GET("/email-templates", templateHandler.List)
		admin.GET("/email-templates/:type", templateHandler.Get)
		admin.PUT("/email-templates/:type", templateHandler.Update)
		admin.POST("/email-templates/test", templateHandler.SendTest)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
