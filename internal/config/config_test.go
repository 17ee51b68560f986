package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the yaml file", func(t *testing.T) {
		// Given: a config file
		path := writeConfig(t, `
log-level: debug
log-format: text
http-port: "8080"
debug-endpoint: true
game:
  default-grid-size: 4
  max-grid-size: 6
redis:
  enabled: true
  host: redis
telegram:
  enabled: true
  token: "123:abc"
  chat-ids: [1, 2]
`)

		// When: loading it
		conf, err := Load(path)

		// Then: the values are parsed and defaults fill the gaps
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "text", conf.LogFormat)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.True(t, conf.DebugEndpoint)
		assert.Equal(t, Game{DefaultGridSize: 4, MaxGridSize: 6}, conf.Game)
		assert.Equal(t, "redis:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "duelrooms:notifications", conf.Redis.Channel)
		assert.Equal(t, []int64{1, 2}, conf.Telegram.ChatIDs)
		assert.Equal(t, 64, conf.Notifications.QueueSize)
	})

	t.Run("Falls back to the environment without a file", func(t *testing.T) {
		t.Setenv("PORT", "4000")
		t.Setenv("TELEGRAM_CHAT_IDS", "10,20")

		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.NoError(t, err)
		assert.Equal(t, "4000", conf.HTTPPort)
		assert.Equal(t, "info", conf.LogLevel)
		assert.False(t, conf.DebugEndpoint)
		assert.Equal(t, 3, conf.Game.DefaultGridSize)
		assert.Equal(t, []int64{10, 20}, conf.Telegram.ChatIDs)
	})

	t.Run("Rejects a default grid above the maximum", func(t *testing.T) {
		path := writeConfig(t, `
game:
  default-grid-size: 12
  max-grid-size: 10
`)

		_, err := Load(path)

		require.Error(t, err)
	})

	t.Run("Telegram needs a token", func(t *testing.T) {
		path := writeConfig(t, "telegram:\n  enabled: true\n")

		_, err := Load(path)

		require.Error(t, err)
	})
}

func TestMustLoad_PanicsOnBrokenFile(t *testing.T) {
	path := writeConfig(t, "game: [")

	assert.Panics(t, func() { MustLoad(path) })
}
