package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttempts counts failed logins per account inside a sliding lockout window
type LoginAttempts interface {
	Failed(ctx context.Context, email string) (int64, error)
	Count(ctx context.Context, email string) (int64, error)
	Reset(ctx context.Context, email string) error
}

type loginAttempts struct {
	client *redis.Client
	window time.Duration
}

// NewLoginAttempts creates a failed-login counter whose entries expire after window
func NewLoginAttempts(client *redis.Client, window time.Duration) LoginAttempts {
	return &loginAttempts{client: client, window: window}
}

func attemptsKey(email string) string {
	return "auth:attempts:" + email
}

func (c *loginAttempts) Failed(ctx context.Context, email string) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, attemptsKey(email))
		pipe.Expire(ctx, attemptsKey(email), c.window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *loginAttempts) Count(ctx context.Context, email string) (int64, error) {
	n, err := c.client.Get(ctx, attemptsKey(email)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (c *loginAttempts) Reset(ctx context.Context, email string) error {
	return c.client.Del(ctx, attemptsKey(email)).Err()
}
