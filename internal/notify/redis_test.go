package notify

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/duelrooms-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisNotifier_Notify(t *testing.T) {
	ctx, st := suite.New(t)

	// Given: a subscriber on the notification channel
	sub := st.Redis.Subscribe(ctx, "duelrooms:notifications")
	t.Cleanup(func() { _ = sub.Close() })

	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	notifier := NewRedisNotifier(st.Redis, "duelrooms:notifications")

	// When: a notification is published
	err = notifier.Notify(ctx, "Room deleted", "room abc is empty")
	require.NoError(t, err)

	// Then: the subscriber receives it as JSON
	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var notification Notification
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &notification))
	assert.Equal(t, "Room deleted", notification.Subject)
	assert.Equal(t, "room abc is empty", notification.Body)
	assert.False(t, notification.SentAt.IsZero())
}
