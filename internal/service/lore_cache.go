package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoreCache guarda universos serializados para no golpear Postgres en cada
// tick del scheduler. Las fallas de cache nunca son fatales para el caller.
type LoreCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryLoreCache struct {
	mu    sync.Mutex
	items map[string]memoryLoreEntry
}

type memoryLoreEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryLoreCache() LoreCache {
	return &memoryLoreCache{
		items: make(map[string]memoryLoreEntry),
	}
}

func (c *memoryLoreCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().UTC().After(entry.expiresAt) {
		delete(c.items, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *memoryLoreCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(key) == "" {
		return nil
	}
	entry := memoryLoreEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().UTC().Add(ttl)
	}
	c.items[key] = entry
	return nil
}

func (c *memoryLoreCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

type redisLoreCache struct {
	client *redis.Client
	prefix string
}

func NewRedisLoreCache(client *redis.Client) LoreCache {
	if client == nil {
		return nil
	}
	return &redisLoreCache{
		client: client,
		prefix: "universe:lore:",
	}
}

func (c *redisLoreCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *redisLoreCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *redisLoreCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Del(ctx, c.prefix+key).Err()
}
