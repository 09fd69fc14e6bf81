package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/localspot/social-core/config"
	"github.com/localspot/social-core/internal/model"
)

// InitDB opens the configured database and migrates the core tables.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates/updates the schema for all stored entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Follow{},
		&model.OwnerProfile{},
		&model.VisitorProfile{},
		&model.VisitorPost{},
		&model.OwnerPost{},
		&model.Survey{},
		&model.SurveyOption{},
		&model.SurveyVote{},
	)
}
