package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/internal/repository"
)

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

func seedOwner(t *testing.T, repo repository.ProfileRepository, id, first, last, handle string) {
	t.Helper()
	require.NoError(t, repo.CreateOwner(context.Background(), &model.OwnerProfile{
		ActorID: id, FirstName: first, LastName: last, Handle: handle,
	}))
}

func seedVisitor(t *testing.T, repo repository.ProfileRepository, id, first, last, handle string) {
	t.Helper()
	require.NoError(t, repo.CreateVisitor(context.Background(), &model.VisitorProfile{
		ActorID: id, FirstName: first, LastName: last, Handle: handle,
	}))
}

// captureNotifier records notifications and signals arrival, since the
// follow service fires them asynchronously.
type captureNotifier struct {
	mu  sync.Mutex
	got []Notification
	ch  chan Notification
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{ch: make(chan Notification, 16)}
}

func (n *captureNotifier) Notify(_ context.Context, ntf Notification) {
	n.mu.Lock()
	n.got = append(n.got, ntf)
	n.mu.Unlock()
	n.ch <- ntf
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.got)
}
