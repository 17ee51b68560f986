package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes notifications as JSON on a pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
	}
}

func (that *RedisNotifier) Notify(ctx context.Context, subject, body string) error {
	payload, err := json.Marshal(Notification{Subject: subject, Body: body, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("could not marshal notification: %w", err)
	}

	if err = that.client.Publish(ctx, that.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}
