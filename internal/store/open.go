package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	// Redis используется драйвером redis; клиент может разделяться с лимитером запросов
	Redis *redis.Client
}

// Open выбирает бэкенд по имени драйвера
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, "":
		path := opts.SQLitePath
		if path == "" {
			path = "casino.db"
		}
		return NewSQLite(ctx, path)
	case DriverPostgres:
		return NewPostgres(ctx, opts.DatabaseURL)
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("store: redis driver requires a client")
		}
		if err := opts.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedis(opts.Redis, "casino"), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", opts.Driver)
	}
}
