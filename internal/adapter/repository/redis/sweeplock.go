package redis

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// SweepLock is a best-effort distributed lock so only one instance runs a
// sweep at a time when several replicas share the database. The in-process
// single-flight guard still applies; this only widens it across instances.
type SweepLock struct {
	client *redis.Client
	key    string
	token  string
}

// NewSweepLock creates a new SweepLock.
func NewSweepLock(client *redis.Client) *SweepLock {
	return &SweepLock{
		client: client,
		key:    "creditdesk:sweep:lock",
		token:  ulid.Make().String(),
	}
}

// TryAcquire claims the lock for ttl. It reports false when another
// instance holds it.
func (l *SweepLock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, ttl).Result()
}

// Release frees the lock if this instance still holds it. A lock that
// expired and was claimed by another instance is left alone.
func (l *SweepLock) Release(ctx context.Context) error {
	val, err := l.client.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val != l.token {
		return nil
	}

	return l.client.Del(ctx, l.key).Err()
}
