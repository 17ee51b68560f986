package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123:secret"

// fakeBotAPI - answers getMe and sendMessage, chat 13 does not exist.
type fakeBotAPI struct {
	mu   sync.Mutex
	sent map[string]string
}

func (that *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"duel","username":"duel_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		chatID := r.PostForm.Get("chat_id")
		if chatID == "13" {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}

		that.mu.Lock()
		that.sent[chatID] = r.PostForm.Get("text")
		that.mu.Unlock()

		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":` + chatID + `,"type":"private"}}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTelegram(t *testing.T, chatIDs []int64) (*TelegramNotifier, *fakeBotAPI) {
	t.Helper()

	api := &fakeBotAPI{sent: make(map[string]string)}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	bot, err := tgbotapi.NewBotAPIWithClient(testToken, server.URL+"/bot%s/%s", server.Client())
	require.NoError(t, err)
	require.Equal(t, "duel_bot", bot.Self.UserName)

	return NewTelegramNotifierWithBot(bot, chatIDs), api
}

func TestTelegramNotifier_Notify(t *testing.T) {
	t.Run("Sends to every chat", func(t *testing.T) {
		// Given: a notifier for two chats
		notifier, api := newTelegram(t, []int64{42, 43})

		// When: a notification is sent
		err := notifier.Notify(context.Background(), "Room created", "alice created abc")

		// Then: both chats got subject and body
		require.NoError(t, err)
		assert.Equal(t, "Room created\n\nalice created abc", api.sent["42"])
		assert.Equal(t, "Room created\n\nalice created abc", api.sent["43"])
	})

	t.Run("Failed chat does not stop the others", func(t *testing.T) {
		notifier, api := newTelegram(t, []int64{13, 42})

		err := notifier.Notify(context.Background(), "Game won", "bob won")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "chat 13")
		assert.Contains(t, api.sent, "42")
	})

	t.Run("Canceled context stops sending", func(t *testing.T) {
		notifier, api := newTelegram(t, []int64{42})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := notifier.Notify(ctx, "s", "b")

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, api.sent)
	})
}
