package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/newsroom-tools/newsletter-backend/internal/config"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"github.com/xo/dburl"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DatabaseURL, cfg.Debug)
	if err != nil {
		return err
	}
	DB = db
	slog.Info("database connected")
	return nil
}

// Open parses a DATABASE_URL (postgres://… or sqlite:…) and opens a GORM
// handle with a pool sized for the selected driver.
func Open(rawURL string, debug bool) (*gorm.DB, error) {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	var dialector gorm.Dialector
	switch u.Driver {
	case "postgres", "pgx":
		dialector = postgres.Open(u.DSN)
	case "sqlite3", "sqlite":
		dialector = sqlite.Open(u.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", u.Driver)
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	return db, nil
}

// Migrate runs AutoMigrate for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Newsletter{},
		&models.NewsletterAdmin{},
		&models.Contribution{},
		&models.Template{},
		&models.SystemLog{},
	)
}
