// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ipr-backend/internal/config"
	"github.com/javajoker/ipr-backend/internal/database"
	"github.com/javajoker/ipr-backend/internal/events"
	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/metrics"
	"github.com/javajoker/ipr-backend/internal/middleware"
	"github.com/javajoker/ipr-backend/internal/repository"
	"github.com/javajoker/ipr-backend/internal/repository/memory"
	"github.com/javajoker/ipr-backend/internal/repository/postgres"
	"github.com/javajoker/ipr-backend/internal/router"
	"github.com/javajoker/ipr-backend/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, db, err := openStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	if db != nil {
		defer database.Close(db, log)
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale, cfg.I18n.LocalesPath); err != nil {
		log.WithError(err).Fatal("failed to initialize i18n")
	}

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	hub := events.NewHub(log.WithField("component", "hub"), m.LiveSubscriptions())
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		bridge := events.NewRedisBridge(client, cfg.Redis.Channel, hub, log)
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("redis change bridge stopped")
			}
		}()
	}

	svc, err := router.NewServices(store, cfg, hub, m, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize services")
	}

	if _, err := svc.Auth.EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, cfg.Seed.AdminName); err != nil {
		log.WithError(err).Fatal("failed to seed admin account")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiters := middleware.DefaultLimiters()
	limiters.Run(ctx)

	// Initialize router
	r := router.Initialize(svc, cfg, limiters, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info("shutting down server")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		os.Exit(1)
	}
	svc.Notifications.Drain()

	log.Info("server exited")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.Environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(level)
	return log
}

// openStore returns the configured repository backend; db is nil for the memory store.
func openStore(cfg *config.Config, log logrus.FieldLogger) (*repository.Store, *gorm.DB, error) {
	if cfg.Database.IsMemory() {
		log.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(nil), nil, nil
	}

	db, err := database.Initialize(cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}

	// Run database migrations
	if err := database.RunMigrations(db, log); err != nil {
		database.Close(db, log)
		return nil, nil, err
	}
	return postgres.NewStore(db), db, nil
}
