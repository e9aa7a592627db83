package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/guttosm/dipwatch/config"
)

// redisOpener connects to cfg.Redis and pings once.
var redisOpener = func(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
