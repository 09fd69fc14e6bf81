package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/localspot/social-core/pkg/logger"
)

// Notification is the event pushed to a recipient's live connection,
// if they have one. Delivery is best-effort by contract.
type Notification struct {
	RecipientID string    `json:"recipient_id"`
	SenderID    string    `json:"sender_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ContentRef  string    `json:"content_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

const NotificationTypeFollow = "follow"

// Notifier is fire-and-forget: failures are logged, never returned,
// and never roll back the mutation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

const recentNotificationsCap = 100

// RedisNotifier publishes to a per-recipient channel for live
// listeners and keeps a capped recent list for reconnecting clients.
// The channel lifecycle belongs to whatever gateway subscribes; this
// side only ever publishes.
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier { return &RedisNotifier{rdb: rdb} }

func (n *RedisNotifier) Notify(ctx context.Context, ntf Notification) {
	if ntf.CreatedAt.IsZero() {
		ntf.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(ntf)
	if err != nil {
		logger.Warn("notify: marshal failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	channel := fmt.Sprintf("notify:%s", ntf.RecipientID)
	listKey := fmt.Sprintf("notifications:%s", ntf.RecipientID)

	pipe := n.rdb.Pipeline()
	pipe.Publish(ctx, channel, payload)
	pipe.LPush(ctx, listKey, payload)
	pipe.LTrim(ctx, listKey, 0, recentNotificationsCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("notify: delivery failed",
			zap.String("recipient", ntf.RecipientID),
			zap.String("type", ntf.Type),
			zap.Error(err))
	}
}
