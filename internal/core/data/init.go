package data

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dcrodman/termcred/internal/core"
)

// Open connects to the database engine named in the config.
func Open(cfg *core.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Database.Engine) {
	case "sqlite":
		dialector = sqlite.Open(cfg.QualifiedPath(cfg.Database.Filename))
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL())
	default:
		return nil, fmt.Errorf("unsupported database engine: %s", cfg.Database.Engine)
	}

	// By default only log errors but enable full SQL query prints-to-console with debug mode
	log := logger.Default.LogMode(logger.Error)
	if cfg.Database.Debug {
		log = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables backing the models in this package.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Account{}, &Terminal{}); err != nil {
		return fmt.Errorf("error auto migrating db: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	database, err := db.DB()
	if err != nil {
		return fmt.Errorf("error while getting current connection: %w", err)
	}
	if err := database.Close(); err != nil {
		return fmt.Errorf("error while closing database connection: %w", err)
	}
	return nil
}
