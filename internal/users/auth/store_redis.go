// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/rankboard/internal/platform/constants"
	"github.com/taibuivan/rankboard/pkg/fold"
)

// RedisLoginThrottle implements [LoginThrottle] with one expiring counter per
// folded display name.
type RedisLoginThrottle struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
}

// NewLoginThrottle creates a throttle that locks a name after limit failures
// within window. The lock lifts when the window of the first failure expires.
func NewLoginThrottle(client redis.Cmdable, limit int, window time.Duration) *RedisLoginThrottle {
	if limit < 1 {
		limit = LoginFailureLimit
	}
	if window <= 0 {
		window = LoginLockout
	}
	return &RedisLoginThrottle{client: client, limit: int64(limit), window: window}
}

func (throttle *RedisLoginThrottle) key(name string) string {
	return constants.RedisPrefixLoginFailures + fold.Key(name)
}

/*
Allow reports whether another login attempt may be made for name.

Parameters:
  - ctx: context.Context
  - name: string

Returns:
  - bool: false once the failure count reached the limit
  - error: Execution errors
*/
func (throttle *RedisLoginThrottle) Allow(ctx context.Context, name string) (bool, error) {
	failures, err := throttle.client.Get(ctx, throttle.key(name)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis_login_throttle_get_failed: %w", err)
	}
	return failures < throttle.limit, nil
}

// RecordFailure counts one failed attempt for name. The first failure starts
// the window.
func (throttle *RedisLoginThrottle) RecordFailure(ctx context.Context, name string) error {
	key := throttle.key(name)

	failures, err := throttle.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis_login_throttle_incr_failed: %w", err)
	}

	if failures == 1 {
		if err := throttle.client.Expire(ctx, key, throttle.window).Err(); err != nil {
			return fmt.Errorf("redis_login_throttle_expire_failed: %w", err)
		}
	}

	return nil
}

// Reset clears the failure count for name.
func (throttle *RedisLoginThrottle) Reset(ctx context.Context, name string) error {
	if err := throttle.client.Del(ctx, throttle.key(name)).Err(); err != nil {
		return fmt.Errorf("redis_login_throttle_del_failed: %w", err)
	}
	return nil
}
