package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisTickLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisTickLocker crea un lock distribuido con SetNX para que dos
// invocaciones del cron (o dos replicas) no corran el mismo tick a la vez.
// El TTL es el seguro contra procesos que mueren sin soltar el lock.
func NewRedisTickLocker(client *redis.Client, ttl time.Duration) TickLocker {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisTickLocker{
		client: client,
		key:    "scheduler:tick:lock",
		ttl:    ttl,
	}
}

func (l *redisTickLocker) Acquire(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return l.client.SetNX(ctx, l.key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
}

func (l *redisTickLocker) Release(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return l.client.Del(ctx, l.key).Err()
}
