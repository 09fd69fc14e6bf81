package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/localspot/social-core/internal/model"
)

// setupDB opens an in-memory sqlite database. A single connection
// keeps concurrent writers serialized the way a server-grade store
// would be, so the OnConflict paths are exercised without sqlite busy
// errors.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Follow{},
		&model.OwnerProfile{},
		&model.VisitorProfile{},
		&model.VisitorPost{},
		&model.OwnerPost{},
		&model.Survey{},
		&model.SurveyOption{},
		&model.SurveyVote{},
	))
	return db
}
