package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipe_app_echo/internal/models"
)

const sqlitePrefix = "sqlite://"

// InitDB opens the database with connection pooling. Postgres DSNs (the
// Supabase connection string) use the postgres driver; "sqlite://<path>" and
// ":memory:" use sqlite for local development and tests.
func InitDB(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	dialector, isSQLite := dialectorFor(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// unique violations surface as gorm.ErrDuplicatedKey on both drivers
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if isSQLite {
		// sqlite allows a single writer, and every ":memory:" connection is a
		// separate database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool) {
	switch {
	case dsn == ":memory:":
		return sqlite.Open(dsn), true
	case strings.HasPrefix(dsn, sqlitePrefix):
		return sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix)), true
	default:
		return postgres.Open(dsn), false
	}
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Recipe{},
		&models.Favorite{},
		&models.RecipeRating{},
		&models.UserProfile{},
		&models.ScheduledTask{},
		&models.ScheduledTaskHistory{},
	)
}

// GormLogLevel maps the application log level onto gorm's logger levels
func GormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "info", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
