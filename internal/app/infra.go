package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"auth-gateway/internal/config"
	"auth-gateway/internal/logger"
	"auth-gateway/internal/redis"
)

type Infra struct {
	// Redis is nil when the cache is unreachable; the gateway still runs
	// because the session cache is advisory.
	Redis *redis.Client

	// DB is nil when no audit database is configured.
	DB *sql.DB
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{}

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Warn("session cache unavailable, continuing without it", map[string]any{
			"addr":  cfg.RedisAddr,
			"error": err.Error(),
		})
	} else {
		infra.Redis = redisClient
		logger.Info("redis ready", nil)
	}

	if cfg.DatabaseDSN != "" {
		sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, err
		}
		infra.DB = sqlDB
		logger.Info("audit database ready", nil)
	}

	return infra, nil
}

func (i *Infra) Close() error {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.DB != nil {
		return i.DB.Close()
	}
	return nil
}
