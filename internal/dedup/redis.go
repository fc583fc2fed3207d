package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnexam/examgen/internal/question"
)

// seenTTL bounds how long digests survive; long enough to cover any
// authoring session, short enough that the set does not grow forever.
const seenTTL = 30 * 24 * time.Hour

// RedisRegistry is a Registry backed by Redis/Dragonfly so dedup state
// survives process restarts when multiple authoring sessions share a
// bank file.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry connects to the cache and verifies it is reachable.
func NewRedisRegistry(ctx context.Context, url string) (*RedisRegistry, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return &RedisRegistry{client: client}, nil
}

func (r *RedisRegistry) Seen(ctx context.Context, coord question.Coordinate, digest string) (bool, error) {
	key := "examgen:seen:" + coord.String() + ":" + digest
	set, err := r.client.SetNX(ctx, key, 1, seenTTL).Result()
	if err != nil {
		return false, fmt.Errorf("recording digest: %w", err)
	}
	return !set, nil
}

// Close shuts down the cache client.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
