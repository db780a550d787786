package database

import (
	"fmt"
	"time"

	"checksuite-service/internal/model"
	"checksuite-service/pkg/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB initializes the database connection and runs migrations
func InitDB(cfg *config.Config) error {
	// Connect with PreferSimpleProtocol to prevent "prepared statement already exists" errors
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	var err error
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	return Migrate(db)
}

// Migrate creates or updates the table structure for all models.
// Exposed separately so tests can migrate their own database instance.
func Migrate(db *gorm.DB) error {
	start := time.Now()

	if err := db.AutoMigrate(
		&model.User{},
		&model.Workspace{},
		&model.WorkspaceMember{},
		&model.WorkspaceRole{},
		&model.Board{},
		&model.Column{},
		&model.Card{},
		&model.ChecklistItem{},
		&model.ProcessTemplate{},
		&model.TemplateVersion{},
		&model.TemplateStep{},
		&model.TemplateChecklistItem{},
		&model.TemplateFavorite{},
		&model.WorkspaceInvite{},
		&model.BoardShare{},
		&model.AuditEvent{},
	); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	if log, err := zap.NewProduction(); err == nil {
		log.Info("Database migration completed", zap.Duration("duration", time.Since(start)))
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}
