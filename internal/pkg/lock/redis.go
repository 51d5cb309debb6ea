package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultKeyPrefix    = "dm:lock:character:"
	defaultRetryBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so a holder
// whose TTL expired never releases someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a Locker shared by every server instance pointing at the same Redis.
type RedisLock struct {
	client  redis.UniversalClient
	ttl     time.Duration
	prefix  string
	backoff time.Duration
}

// RedisOption configures a RedisLock.
type RedisOption func(*RedisLock)

// WithKeyPrefix overrides the key namespace.
func WithKeyPrefix(prefix string) RedisOption {
	return func(l *RedisLock) { l.prefix = prefix }
}

// WithRetryBackoff sets how long to wait between acquisition attempts.
func WithRetryBackoff(d time.Duration) RedisOption {
	return func(l *RedisLock) { l.backoff = d }
}

// NewRedisLock creates a RedisLock. ttl bounds how long a lock outlives a crashed holder.
func NewRedisLock(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis lock: client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("redis lock: ttl must be positive, got %s", ttl)
	}

	l := &RedisLock{
		client:  client,
		ttl:     ttl,
		prefix:  defaultKeyPrefix,
		backoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// TryLock makes a single acquisition attempt and returns the release token on success.
func (l *RedisLock) TryLock(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+key, token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire redis lock: %w", err)
	}
	return token, ok, nil
}

// Unlock releases the lock if token still owns it.
func (l *RedisLock) Unlock(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release redis lock: %w", err)
	}
	return nil
}

// WithLockContext polls for the lock until timeout, runs fn, then releases it.
func (l *RedisLock) WithLockContext(ctx context.Context, key string, timeout time.Duration, fn func() error) error {
	deadline := time.Now().Add(timeout)

	var token string
	for {
		t, ok, err := l.TryLock(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			token = t
			break
		}
		if time.Now().Add(l.backoff).After(deadline) {
			return ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.backoff):
		}
	}

	defer func() {
		// Release with a fresh context so a cancelled request still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := l.Unlock(releaseCtx, key, token); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Redis lock release failed, waiting for TTL")
		}
	}()

	return fn()
}
