package archive

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each object as a hash {payload, content_type} at "container:key".
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a Redis archiver over an already connected client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func redisKey(container, key string) string {
	return container + ":" + key
}

// Put stores payload and contentType in the hash "container:key",
// replacing any earlier object at the same key.
func (r *Redis) Put(ctx context.Context, container, key string, payload []byte, contentType string) error {
	k := redisKey(container, key)
	if err := r.client.HSet(ctx, k, "payload", payload, "content_type", contentType).Err(); err != nil {
		return fmt.Errorf("redis put %s: %w", k, err)
	}
	return nil
}

// Ping reports whether the server is reachable.
func (r *Redis) Ping() error {
	return r.client.Ping(context.Background()).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
