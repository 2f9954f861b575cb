package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/config"
	"github.com/hahnmechanical/site/internal/db"
	"github.com/hahnmechanical/site/internal/handler"
	"github.com/hahnmechanical/site/internal/logging"
	"github.com/hahnmechanical/site/internal/mail"
	"github.com/hahnmechanical/site/internal/middleware"
	"github.com/hahnmechanical/site/internal/router"
	"github.com/hahnmechanical/site/internal/storage"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.GinMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := db.EnsureUser(cfg.AdminUserName, cfg.AdminPassword); err != nil {
		logger.Fatal("failed to ensure admin user", zap.Error(err))
	}

	api := handler.NewAPI(db.DB, handler.Options{
		Uploader:    buildUploader(cfg, logger),
		Mailer:      buildMailer(cfg, logger),
		NotifyTo:    cfg.Mail.NotifyTo,
		Business:    cfg.Business,
		SiteBaseURL: cfg.SiteBaseURL,
		Logger:      logger,
	})

	formLimiter := middleware.NewRateLimiter(30*time.Second, 5)
	loginLimiter := middleware.NewRateLimiter(12*time.Second, 5)
	stopCleanup := make(chan struct{})
	go formLimiter.Run(10*time.Minute, stopCleanup)
	go loginLimiter.Run(10*time.Minute, stopCleanup)

	r, err := router.SetupRouter(api, router.Options{
		SessionSecret:  cfg.SessionSecret,
		TrustedProxies: cfg.TrustedProxies,
		UploadDir:      cfg.UploadDir,
		UploadURLPath:  cfg.UploadURLPath,
		CORSOrigins:    cfg.CORSOrigins,
		SecureCookies:  cfg.GinMode == gin.ReleaseMode && strings.HasPrefix(cfg.SiteBaseURL, "https://"),
		Logger:         logger,
		FormLimiter:    formLimiter,
		LoginLimiter:   loginLimiter,
	})
	if err != nil {
		logger.Fatal("failed to set up router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	close(stopCleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server exited")
}

func buildUploader(cfg config.AppConfig, logger *zap.Logger) *storage.Uploader {
	var store storage.Store = storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPath)
	if cfg.Cloudinary.Enabled() {
		cld, err := storage.NewCloudinaryStore(cfg.Cloudinary.ConnectionURL(), "", logger)
		if err != nil {
			logger.Warn("cloudinary unavailable, falling back to local uploads", zap.Error(err))
		} else {
			store = cld
			logger.Info("using cloudinary for uploads")
		}
	}
	return storage.NewUploader(store, cfg.UploadMaxBytes, logger)
}

func buildMailer(cfg config.AppConfig, logger *zap.Logger) mail.Sender {
	if !cfg.Mail.Enabled() {
		logger.Warn("SMTP not configured, inquiry notifications will only be logged")
		return mail.NewLogSender(logger)
	}
	return mail.NewSMTP(mail.Config{
		Host: cfg.Mail.Host,
		Port: cfg.Mail.Port,
		User: cfg.Mail.User,
		Pass: cfg.Mail.Pass,
		From: cfg.Mail.From,
	}, logger)
}
