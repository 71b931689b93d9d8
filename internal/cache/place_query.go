// Package cache remembers which place a free-text search resolved to, so
// repeated searches skip the external lookup.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace     = "pdb"
	placeQueryPrefix = "place_query"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
}

// PlaceQueryCache maps normalized search queries to place ids
type PlaceQueryCache struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to Redis and verifies connectivity
func New(ctx context.Context, opts Options) (*PlaceQueryCache, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	raw := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &PlaceQueryCache{store: raw, raw: raw, ttl: opts.TTL}, nil
}

// Key builds the cache key for a query
func Key(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return fmt.Sprintf("%s:%s:%s", keyNamespace, placeQueryPrefix, normalized)
}

// Get returns the place id cached for query; ok is false on a miss
func (c *PlaceQueryCache) Get(ctx context.Context, query string) (string, bool, error) {
	id, err := c.store.Get(ctx, Key(query)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read place query cache: %w", err)
	}
	return id, true, nil
}

// Set caches the place id a query resolved to
func (c *PlaceQueryCache) Set(ctx context.Context, query, placeID string) error {
	if err := c.store.Set(ctx, Key(query), placeID, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write place query cache: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *PlaceQueryCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

// Close releases the underlying connection pool
func (c *PlaceQueryCache) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
