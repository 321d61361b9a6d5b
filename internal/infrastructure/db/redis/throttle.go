package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// LoginThrottle counts failed login attempts per (role, email) in a fixed
// window backed by Redis. Key format: login_fail:<role>:<email>. The counter
// expires with the window, so a quiet account resets on its own.
type LoginThrottle struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
// Non-positive limits fall back to 5 attempts per 15 minutes.
func NewLoginThrottle(client *redis.Client, max int, window time.Duration) *LoginThrottle {
	if max <= 0 {
		max = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginThrottle{client: client, max: int64(max), window: window}
}

// TooMany reports whether the pair has exhausted its failure budget.
func (t *LoginThrottle) TooMany(ctx context.Context, role domain.Role, email string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(role, email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= t.max, nil
}

// RecordFailure counts one failed attempt; the first failure in a window
// arms the expiry.
func (t *LoginThrottle) RecordFailure(ctx context.Context, role domain.Role, email string) error {
	key := t.key(role, email)
	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return fmt.Errorf("throttle expire: %w", err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, role domain.Role, email string) error {
	return t.client.Del(ctx, t.key(role, email)).Err()
}

func (t *LoginThrottle) key(role domain.Role, email string) string {
	return fmt.Sprintf("login_fail:%s:%s", role, email)
}
