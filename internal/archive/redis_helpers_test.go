package archive

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// get returns a previously archived object.
func (r *Redis) get(ctx context.Context, container, key string) ([]byte, string, error) {
	k := redisKey(container, key)
	vals, err := r.client.HMGet(ctx, k, "payload", "content_type").Result()
	if err != nil {
		return nil, "", fmt.Errorf("redis get %s: %w", k, err)
	}
	payload, ok := vals[0].(string)
	if !ok {
		return nil, "", fmt.Errorf("redis get %s: %w", k, redis.Nil)
	}
	ct, _ := vals[1].(string)
	return []byte(payload), ct, nil
}
