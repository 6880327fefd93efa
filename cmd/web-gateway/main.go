package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/turma-apps/turma-web/api/swagger"
	"github.com/turma-apps/turma-web/internal/handler"
	"github.com/turma-apps/turma-web/internal/middleware"
	"github.com/turma-apps/turma-web/internal/service"
	"github.com/turma-apps/turma-web/internal/upstream"
	"github.com/turma-apps/turma-web/pkg/cache"
	"github.com/turma-apps/turma-web/pkg/config"
	"github.com/turma-apps/turma-web/pkg/logger"
	corsmiddleware "github.com/turma-apps/turma-web/pkg/middleware/cors"
	reqidmiddleware "github.com/turma-apps/turma-web/pkg/middleware/requestid"
	"github.com/turma-apps/turma-web/pkg/storage"
)

// @title Turma Web Gateway
// @version 1.0.0
// @description Browser-facing gateway for the school management API
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	api, err := upstream.New(cfg.Upstream, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build upstream client", "error", err)
	}

	store, err := storage.NewLocalStorage(cfg.Downloads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare downloads storage", "error", err)
	}
	signer := storage.NewSigner(cfg.Downloads.SignedURLSecret, cfg.Downloads.SignedURLTTL)

	validate := validator.New()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
		api.WithObserver(metricsSvc.ObserveUpstream)
	}

	cacheSvc := service.NewCacheService(redisClient, cfg.ViewCache.TTL, cfg.ViewCache.Enabled, logr).
		WithMetrics(metricsSvc)
	authSvc := service.NewAuthService(api, redisClient, validate, logr, service.SessionConfig{
		Secret:     cfg.Session.Secret,
		Expiration: cfg.Session.Expiration,
		Issuer:     cfg.Session.Issuer,
	})
	classSvc := service.NewClassService(api, cacheSvc, validate, logr)
	studentSvc := service.NewStudentService(api, cacheSvc, validate, logr)
	rollcallSvc := service.NewRollcallService(api, validate, logr)
	paymentSvc := service.NewPaymentService(api, validate, logr)
	userSvc := service.NewUserService(api, validate, logr)
	exportSvc := service.NewExportService(paymentSvc, rollcallSvc, logr)
	reportSvc := service.NewReportService(api, store, signer, validate, logr, service.ReportConfig{
		Workers:    cfg.Downloads.WorkerConcurrency,
		MaxRetries: cfg.Downloads.WorkerRetries,
	})
	reportSvc.Start(ctx, cfg.Downloads.CleanupInterval, cfg.Downloads.SignedURLTTL)
	defer reportSvc.Stop()

	authHdl := handler.NewAuthHandler(authSvc)
	classHdl := handler.NewClassHandler(classSvc)
	studentHdl := handler.NewStudentHandler(studentSvc)
	rollcallHdl := handler.NewRollcallHandler(rollcallSvc)
	paymentHdl := handler.NewPaymentHandler(paymentSvc)
	userHdl := handler.NewUserHandler(userSvc)
	reportHdl := handler.NewReportHandler(reportSvc, exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	root := r.Group(cfg.APIPrefix)

	root.POST("/auth/login", authHdl.Login)
	root.POST("/auth/logout", authHdl.Logout)
	// signed URL carries its own auth
	root.GET("/reports/file", reportHdl.File)

	authed := root.Group("")
	authed.Use(middleware.Session(authSvc))
	{
		authed.GET("/auth/me", authHdl.Me)
		authed.PUT("/auth/password", authHdl.ChangePassword)

		authed.GET("/classes", classHdl.List)
		authed.POST("/classes", classHdl.Create)
		authed.GET("/classes/:id", classHdl.Get)
		authed.PUT("/classes/:id", classHdl.Update)
		authed.DELETE("/classes/:id", classHdl.Delete)
		authed.GET("/classes/:id/students", classHdl.Roster)
		authed.POST("/classes/:id/enroll/:studentId", classHdl.Enroll)

		authed.GET("/classes/:id/sessions", rollcallHdl.Sessions)
		authed.GET("/classes/:id/sessions/export", reportHdl.AttendanceExport)
		authed.GET("/classes/:id/sessions/:sessionId", rollcallHdl.History)
		authed.DELETE("/classes/:id/sessions/:sessionId", rollcallHdl.Delete)
		authed.GET("/classes/:id/rollcall", rollcallHdl.Editor)
		authed.POST("/classes/:id/rollcall", rollcallHdl.Save)

		authed.GET("/classes/:id/payments", paymentHdl.Statement)
		authed.POST("/classes/:id/payments/toggle", paymentHdl.Toggle)
		authed.POST("/classes/:id/payments/batch", paymentHdl.BatchToggle)
		authed.GET("/classes/:id/payments/export", reportHdl.StatementExport)

		authed.GET("/payments", paymentHdl.MonthlyStatement)
		authed.POST("/payments/toggle", paymentHdl.Toggle)
		authed.POST("/payments/batch", paymentHdl.BatchToggle)

		authed.GET("/students", studentHdl.List)
		authed.POST("/students", studentHdl.Create)
		authed.PUT("/students/:id", studentHdl.Update)
		authed.DELETE("/students/:id", studentHdl.Delete)

		authed.GET("/users", userHdl.List)
		authed.POST("/users", userHdl.Create)
		authed.DELETE("/users/:id", userHdl.Delete)
		authed.PUT("/users/:id/password", userHdl.SetPassword)

		authed.POST("/reports", reportHdl.Request)
		authed.GET("/reports/:id", reportHdl.Status)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
