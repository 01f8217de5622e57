package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ingenzi/console-gateway/api/swagger"
	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/handler"
	"github.com/ingenzi/console-gateway/internal/middleware"
	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/repository"
	"github.com/ingenzi/console-gateway/internal/screen"
	"github.com/ingenzi/console-gateway/internal/service"
	"github.com/ingenzi/console-gateway/internal/session"
	"github.com/ingenzi/console-gateway/internal/shell"
	"github.com/ingenzi/console-gateway/pkg/config"
	"github.com/ingenzi/console-gateway/pkg/database"
	"github.com/ingenzi/console-gateway/pkg/logger"
	corsmiddleware "github.com/ingenzi/console-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/ingenzi/console-gateway/pkg/middleware/requestid"
	"github.com/ingenzi/console-gateway/pkg/storage"
)

// @title INGENZI Console Gateway
// @version 1.0.0
// @description Backend-for-frontend gateway for the INGENZI administrative console
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

	// Session store. Redis is the durable backend; the in-memory store is a
	// development fallback only.
	var sessions session.Store
	redisClient, err := database.NewRedis(cfg.Redis)
	if err != nil {
		if cfg.Env == config.EnvProduction {
			logr.Sugar().Fatalw("redis unavailable", "error", err)
		}
		logr.Sugar().Warnw("redis unavailable, using in-memory sessions", "error", err)
		sessions = session.NewMemoryStore(cfg.Session.TTL)
	} else {
		defer redisClient.Close() //nolint:errcheck
		sessions = session.NewRedisStore(redisClient, cfg.Session.TTL)
	}

	metrics := service.NewMetricsService()

	// Console action trail, optional.
	var trail handler.AuditReader
	var auditWriter service.AuditWriter
	var auditRepo *repository.AuditRepository
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(cfg.Audit)
		if err != nil {
			logr.Sugar().Warnw("audit database unavailable, trail disabled", "error", err)
		} else {
			defer db.Close() //nolint:errcheck
			auditRepo = repository.NewAuditRepository(db)
			auditWriter = auditRepo
			trail = auditRepo
		}
	}
	audit := service.NewAuditService(auditWriter, cfg.Audit.Workers, cfg.Audit.QueueSize, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	audit.Start(rootCtx)
	defer audit.Stop()
	if auditRepo != nil && cfg.Audit.Retention > 0 {
		go purgeAuditTrail(rootCtx, auditRepo, cfg.Audit.Retention, logr)
	}

	gw := gateway.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logr, sessions, gateway.WithObserver(metrics))
	screens := screen.NewManager(gw, logr)

	stats := shell.NewStatsRefresher(gw, cfg.Stats.RefreshInterval, logr)
	if cfg.Stats.Enabled {
		stats.Start()
		defer stats.Stop()
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	go cleanupExports(rootCtx, exportStore, cfg.Exports.CleanupInterval, cfg.Exports.SignedURLTTL, logr)

	authHandler := handler.NewAuthHandler(gw, sessions, screens, metrics, audit, logr, cfg.Session.CookieName, cfg.Session.CookieSecure, cfg.Session.TTL)
	shellHandler := handler.NewShellHandler(stats)
	screenHandler := handler.NewScreenHandler(screens, metrics, audit, exportStore, signer, logr)
	fileHandler := handler.NewFileHandler(gw, audit, logr)
	adminHandler := handler.NewAdminHandler(metrics, trail)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/exports/download", screenHandler.DownloadExport)

	authed := api.Group("", middleware.Session(sessions, cfg.Session.CookieName))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)

	authed.GET("/shell", shellHandler.Composition)
	authed.GET("/shell/stats", shellHandler.Stats)

	gated := authed.Group("/screens/:registry", middleware.ScreenGate("registry"))
	gated.GET("", screenHandler.Enter)
	gated.DELETE("", screenHandler.Leave)
	gated.POST("/pages", screenHandler.GoToPage)
	gated.POST("/add", screenHandler.OpenAdd)
	gated.POST("/edit/:id", screenHandler.OpenEdit)
	gated.PATCH("/draft", screenHandler.SetField)
	gated.POST("/draft/file", screenHandler.AttachFile)
	gated.POST("/submit", screenHandler.Submit)
	gated.POST("/delete/:id", screenHandler.RequestDelete)
	gated.POST("/delete/confirm", screenHandler.ConfirmDelete)
	gated.POST("/delete/cancel", screenHandler.CancelDelete)
	gated.POST("/close", screenHandler.Close)
	gated.PUT("/filters", screenHandler.SetFilters)
	gated.GET("/export", screenHandler.Export)

	authed.GET("/files/:id", fileHandler.Metadata)
	authed.GET("/files/download/*path", fileHandler.Download)

	admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.GET("/metrics", adminHandler.Metrics)
	admin.GET("/audit", adminHandler.AuditTrail)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}

// purgeAuditTrail drops trail entries past the retention window, once a day.
func purgeAuditTrail(ctx context.Context, repo *repository.AuditRepository, retention time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := repo.PurgeOlderThan(ctx, time.Now().Add(-retention))
			if err != nil {
				logr.Sugar().Warnw("audit purge failed", "error", err)
				continue
			}
			if purged > 0 {
				logr.Sugar().Infow("audit entries purged", "count", purged)
			}
		}
	}
}

// cleanupExports removes generated export files once their signed links have
// long expired.
func cleanupExports(ctx context.Context, store *storage.LocalStorage, interval, ttl time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.CleanupOlderThan(2 * ttl)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("export files cleaned", "count", len(deleted))
			}
		}
	}
}
