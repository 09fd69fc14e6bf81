package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localspot/social-core/internal/repository"
)

func TestRedisNotifierPublishesAndKeepsRecent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	notifier := NewRedisNotifier(rdb)
	notifier.Notify(context.Background(), Notification{
		RecipientID: "owner1",
		SenderID:    "visitor1",
		Type:        NotificationTypeFollow,
		Title:       "New follower",
		Message:     "You have a new follower",
	})

	raw, err := rdb.LRange(context.Background(), "notifications:owner1", 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, raw, 1)

	var got Notification
	require.NoError(t, json.Unmarshal([]byte(raw[0]), &got))
	assert.Equal(t, "visitor1", got.SenderID)
	assert.Equal(t, NotificationTypeFollow, got.Type)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRedisNotifierFailureIsSwallowed(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close() // take the side channel down
	t.Cleanup(func() { _ = rdb.Close() })

	notifier := NewRedisNotifier(rdb)
	// must neither panic nor return an error surface
	notifier.Notify(context.Background(), Notification{RecipientID: "owner1", SenderID: "visitor1", Type: NotificationTypeFollow})
}

func TestFollowSurvivesNotifierOutage(t *testing.T) {
	db := setupDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()
	t.Cleanup(func() { _ = rdb.Close() })

	followRepo := repository.NewFollowRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	seedOwner(t, profileRepo, "owner1", "Olive", "Owner", "olives-bakery")

	svc := NewFollowService(followRepo, profileRepo, nil, NewRedisNotifier(rdb))
	res, err := svc.Follow(context.Background(), "visitor1", "visitor", "owner1", "owner")
	require.NoError(t, err, "notification failure must never fail the follow")
	assert.True(t, res.Created)
}
