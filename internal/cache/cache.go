// Package cache is the injected (key, ttl) cache collaborator. Query code
// stays cache-oblivious; handlers decorate expensive list responses with it.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reportit/reportit_api/internal/metrics"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// NewRedis opens a redis-backed cache, or a no-op cache when addr is empty
// so callers never have to branch on configuration.
func NewRedis(addr, password string) Cache {
	if addr == "" {
		return Noop{}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &Redis{client: client}
}

type Redis struct {
	client *redis.Client
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	if err != nil {
		log.Printf("cache get %s: %v", key, err)
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		log.Printf("cache delete %s: %v", key, err)
	}
}

func (r *Redis) Close() error { return r.client.Close() }

// Noop satisfies Cache when no redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool)           { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration)   {}
func (Noop) Delete(context.Context, string)                       {}
