// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/ipr-backend/internal/config"
	"github.com/javajoker/ipr-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(logrus.Fields{"host": cfg.Host, "database": cfg.Database}).Info("database connection established")
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	default:
		return logger.Info
	}
}

func Close(db *gorm.DB, log logrus.FieldLogger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Error("error closing database connection")
	} else {
		log.Info("database connection closed")
	}
}

func RunMigrations(db *gorm.DB, log logrus.FieldLogger) error {
	log.Info("running database migrations")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Application{},
		&models.ReviewRecord{},
		&models.Notification{},
		&models.Counter{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db, log)

	log.Info("database migrations completed")
	return nil
}

var indexes = []string{
	// Application indexes
	"CREATE INDEX IF NOT EXISTS idx_applications_applicant_created ON applications(applicant_email, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_applications_status_created ON applications(status, created_at DESC) WHERE deleted_at IS NULL",
	"CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at DESC)",

	// Notification indexes
	"CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read = false",

	// Review history
	"CREATE INDEX IF NOT EXISTS idx_review_records_application_created ON review_records(application_id, created_at)",

	// User indexes
	"CREATE INDEX IF NOT EXISTS idx_users_role_approved ON users(role, is_approved)",

	// Full-text search
	"CREATE INDEX IF NOT EXISTS idx_applications_search ON applications USING GIN(to_tsvector('english', title || ' ' || description))",
}

// createIndexes is best effort: a failing index is logged and the rest still run.
func createIndexes(db *gorm.DB, log logrus.FieldLogger) int {
	failed := 0
	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			failed++
			log.WithError(err).WithField("statement", index).Warn("failed to create index")
		}
	}
	return failed
}
