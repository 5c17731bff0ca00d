package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache stores readings by location.
type Cache interface {
	Get(ctx context.Context, location string) (Reading, bool, error)
	Set(ctx context.Context, location string, r Reading, ttl time.Duration) error
}

type memoryEntry struct {
	reading Reading
	expires time.Time
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get returns an unexpired reading.
func (c *MemoryCache) Get(_ context.Context, location string) (Reading, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[location]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expires) {
		return Reading{}, false, nil
	}
	return e.reading, true, nil
}

// Set stores r until ttl elapses.
func (c *MemoryCache) Set(_ context.Context, location string, r Reading, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[location] = memoryEntry{reading: r, expires: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// RedisCache shares readings between instances.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "moodtune:weather:"}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// Get returns the cached reading. Redis expires stale keys itself.
func (c *RedisCache) Get(ctx context.Context, location string) (Reading, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+location).Bytes()
	if errors.Is(err, redis.Nil) {
		return Reading{}, false, nil
	}
	if err != nil {
		return Reading{}, false, fmt.Errorf("reading cached weather: %w", err)
	}

	var r Reading
	if err := json.Unmarshal(data, &r); err != nil {
		return Reading{}, false, fmt.Errorf("decoding cached weather: %w", err)
	}
	return r, true, nil
}

// Set stores r with ttl.
func (c *RedisCache) Set(ctx context.Context, location string, r Reading, ttl time.Duration) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding weather: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+location, data, ttl).Err(); err != nil {
		return fmt.Errorf("caching weather: %w", err)
	}
	return nil
}
