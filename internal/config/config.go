package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	BotToken         string  `env:"BOT_TOKEN"`
	BotEnabled       bool    `env:"BOT_ENABLED" envDefault:"true"`
	AdminTelegramIDs []int64 `env:"ADMIN_TELEGRAM_IDS" envSeparator:","`

	AppPort     string        `env:"APP_PORT" envDefault:"8080"`
	HTTPEnabled bool          `env:"HTTP_ENABLED" envDefault:"true"`
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// пустое значение разрешает любой Origin для websocket
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`

	Log   LogConfig
	Store StoreConfig
	Game  GameConfig
	Rate  RateLimitConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
	File   string `env:"LOG_FILE"`
}

func (c LogConfig) JSON() bool {
	return c.Format == "json"
}

type StoreConfig struct {
	Driver        string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"casino.db"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

type GameConfig struct {
	StartingBalance    int64         `env:"STARTING_BALANCE" envDefault:"1000"`
	MinesSessionTTL    time.Duration `env:"MINES_SESSION_TTL" envDefault:"1h"`
	MinesSweepInterval time.Duration `env:"MINES_SWEEP_INTERVAL" envDefault:"5m"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"30"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"10s"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for STORE_DRIVER=postgres")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for STORE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.HTTPEnabled && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when HTTP_ENABLED=true")
	}
	if c.Game.StartingBalance <= 0 {
		return errors.New("STARTING_BALANCE must be positive")
	}
	if c.Rate.Requests <= 0 || c.Rate.Window <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// BotActive - бот запускается только при наличии токена
func (c *Config) BotActive() bool {
	return c.BotEnabled && c.BotToken != ""
}
