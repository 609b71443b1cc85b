package config

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the optional stats cache. Callers treat a
// nil client as "caching disabled".
func NewRedisClient(cfg *Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
