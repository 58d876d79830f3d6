package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle tracks failed logins per subject, an account id or an unknown login name.
type LoginThrottle interface {
	Allow(ctx context.Context, subject string) (bool, error)
	RecordFailure(ctx context.Context, subject string) error
	Reset(ctx context.Context, subject string) error
}

// RedisLoginThrottle keeps a failure counter per subject that expires with
// the window opened by the first failure.
type RedisLoginThrottle struct {
	client      redis.Cmdable
	maxFailures int64
	window      time.Duration
}

// NewRedisLoginThrottle builds the throttle.
func NewRedisLoginThrottle(client redis.Cmdable, maxFailures int, window time.Duration) *RedisLoginThrottle {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLoginThrottle{client: client, maxFailures: int64(maxFailures), window: window}
}

func (t *RedisLoginThrottle) key(subject string) string {
	return "helpdesk:login:failures:" + strings.ToLower(strings.TrimSpace(subject))
}

// Allow reports whether another attempt is permitted.
func (t *RedisLoginThrottle) Allow(ctx context.Context, subject string) (bool, error) {
	count, err := t.client.Get(ctx, t.key(subject)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return count < t.maxFailures, nil
}

// RecordFailure increments the counter, starting the window on the first failure.
func (t *RedisLoginThrottle) RecordFailure(ctx context.Context, subject string) error {
	key := t.key(subject)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return t.client.Expire(ctx, key, t.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *RedisLoginThrottle) Reset(ctx context.Context, subject string) error {
	return t.client.Del(ctx, t.key(subject)).Err()
}
