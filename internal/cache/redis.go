package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis caches synthesis results in a shared Redis instance, letting several
// gateway replicas reuse each other's work. Entries expire after ttl.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

var _ Cache = (*Redis)(nil)

// NewRedis connects to the Redis at redisURL and verifies the connection.
func NewRedis(redisURL string, ttl time.Duration, log *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{
		client: client,
		ttl:    ttl,
		log:    log.With(slog.String("component", "redis-cache")),
	}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.Warn("cache lookup failed", slog.String("error", err.Error()))
		return nil, false
	}
	return data, true
}

func (r *Redis) Set(ctx context.Context, key string, audio []byte) {
	if err := r.client.Set(ctx, key, audio, r.ttl).Err(); err != nil {
		r.log.Warn("cache store failed", slog.String("error", err.Error()))
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
