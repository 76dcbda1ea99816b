package presence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/athenalobo/muditha-platform/pkg/log"
)

// Tracker maps a user to their current connection locator. Entries carry
// a fixed expiry and are a best-effort lookup hint, never authoritative:
// a located connection may already be gone.
type Tracker interface {
	// Register upserts the user's locator, refreshing the expiry.
	Register(ctx context.Context, userID, locator string) error
	// Locate returns the user's locator, or ok=false when absent.
	Locate(ctx context.Context, userID string) (locator string, ok bool, err error)
	// Deregister removes the entry. Idempotent.
	Deregister(ctx context.Context, userID string) error
}

// RedisTracker implements Tracker on a Redis key with TTL. Concurrent
// registrations for the same user are last-writer-wins.
type RedisTracker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisTracker creates a new Redis-backed presence tracker.
func NewRedisTracker(client *redis.Client, prefix string, ttl time.Duration) *RedisTracker {
	if prefix == "" {
		prefix = "user_socket_"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisTracker{client: client, prefix: prefix, ttl: ttl}
}

func (t *RedisTracker) key(userID string) string {
	return t.prefix + userID
}

// Register upserts the user's connection locator with the configured TTL.
func (t *RedisTracker) Register(ctx context.Context, userID, locator string) error {
	l := log.Ctx(ctx)

	if err := t.client.Set(ctx, t.key(userID), locator, t.ttl).Err(); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to register presence")
		return err
	}
	l.Debug().Str(log.FieldUserID, userID).Str(log.FieldClientID, locator).Msg("presence registered")
	return nil
}

// Locate looks up the user's current locator.
func (t *RedisTracker) Locate(ctx context.Context, userID string) (string, bool, error) {
	locator, err := t.client.Get(ctx, t.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to locate presence")
		return "", false, err
	}
	return locator, true, nil
}

// Deregister removes the user's locator entry.
func (t *RedisTracker) Deregister(ctx context.Context, userID string) error {
	l := log.Ctx(ctx)

	if err := t.client.Del(ctx, t.key(userID)).Err(); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to deregister presence")
		return err
	}
	l.Debug().Str(log.FieldUserID, userID).Msg("presence deregistered")
	return nil
}
