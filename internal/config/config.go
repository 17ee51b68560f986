package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel      string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat     string        `yaml:"log-format" env:"LOG_FORMAT" env-default:"json"`
	HTTPPort      string        `yaml:"http-port" env:"PORT" env-default:"3001"`
	AllowedOrigin string        `yaml:"allowed-origin" env:"ALLOWED_ORIGIN" env-default:""`
	DebugEndpoint bool          `yaml:"debug-endpoint" env:"DEBUG_ENDPOINT" env-default:"false"`
	Game          Game          `yaml:"game"`
	Notifications Notifications `yaml:"notifications"`
	Redis         Redis         `yaml:"redis"`
	Telegram      Telegram      `yaml:"telegram"`
}

type Game struct {
	DefaultGridSize int `yaml:"default-grid-size" env:"GAME_DEFAULT_GRID_SIZE" env-default:"3"`
	MaxGridSize     int `yaml:"max-grid-size" env:"GAME_MAX_GRID_SIZE" env-default:"10"`
}

type Notifications struct {
	QueueSize int `yaml:"queue-size" env:"NOTIFY_QUEUE_SIZE" env-default:"64"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Channel string `yaml:"channel" env:"REDIS_CHANNEL" env-default:"duelrooms:notifications"`
}

type Telegram struct {
	Enabled bool    `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
	Token   string  `yaml:"token" env:"TELEGRAM_TOKEN"`
	ChatIDs []int64 `yaml:"chat-ids" env:"TELEGRAM_CHAT_IDS" env-separator:","`
}

// MustLoad - load all configurations in config.yml file, environment only when it is missing.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	case err == nil:
		err = cleanenv.ReadConfig(path, config)
	}

	if err != nil {
		return nil, err
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	if that.Game.MaxGridSize < 1 {
		return fmt.Errorf("max-grid-size must be positive, got %d", that.Game.MaxGridSize)
	}

	if that.Game.DefaultGridSize < 1 || that.Game.DefaultGridSize > that.Game.MaxGridSize {
		return fmt.Errorf("default-grid-size must be in [1, %d], got %d", that.Game.MaxGridSize, that.Game.DefaultGridSize)
	}

	if that.Telegram.Enabled && that.Telegram.Token == "" {
		return errors.New("telegram is enabled but the token is empty")
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
