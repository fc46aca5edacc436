// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/armanrma7/agronetixbeck-sub000/internal/config"
	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
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
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.CatalogItem{},
		&models.Region{},
		&models.Village{},
		&models.Announcement{},
		&models.Application{},
		&models.AnnouncementView{},
		&models.Notification{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_type_status ON users(user_type, status)",
		"CREATE INDEX IF NOT EXISTS idx_users_region_eligible ON users(region_id) WHERE verified AND NOT locked",

		// Announcement indexes
		"CREATE INDEX IF NOT EXISTS idx_announcements_owner ON announcements(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_announcements_category_status ON announcements(category, status)",
		"CREATE INDEX IF NOT EXISTS idx_announcements_created_at ON announcements(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_announcements_expiry ON announcements(expiry_date) WHERE status = 'published'",
		"CREATE INDEX IF NOT EXISTS idx_announcements_regions ON announcements USING GIN(regions)",

		// Application indexes
		"CREATE INDEX IF NOT EXISTS idx_applications_announcement_status ON applications(announcement_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_applications_applicant ON applications(applicant_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_pending_unique ON applications(announcement_id, applicant_id) WHERE status = 'pending'",

		// Notification indexes
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC)",

		// Full-text search index
		"CREATE INDEX IF NOT EXISTS idx_announcements_search ON announcements USING GIN(to_tsvector('simple', title || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
