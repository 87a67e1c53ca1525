package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// RedisClient is the minimal interface for a Redis client needed for readiness.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// BuildReadinessChecks returns the db and redis readiness checks. A check is
// nil when its backend is not configured, so /readyz leaves it out.
func BuildReadinessChecks(pool Pinger, rdb RedisClient) (dbCheck, redisCheck func(ctx context.Context) error) {
	if pool != nil {
		dbCheck = func(ctx context.Context) error { return pool.Ping(ctx) }
	}
	if rdb != nil {
		redisCheck = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return dbCheck, redisCheck
}

// WaitReady retries check with exponential backoff until it passes, ctx is
// done or maxElapsed runs out.
func WaitReady(ctx context.Context, name string, check func(ctx context.Context) error, maxElapsed time.Duration) error {
	if check == nil {
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = maxElapsed
	attempt := 0
	op := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return check(pingCtx)
	}
	notify := func(err error, next time.Duration) {
		slog.Warn("dependency not ready", slog.String("dependency", name), slog.Int("attempt", attempt), slog.Duration("retry_in", next), slog.Any("error", err))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return fmt.Errorf("op=app.WaitReady %s: %w", name, err)
	}
	slog.Info("dependency ready", slog.String("dependency", name), slog.Int("attempts", attempt))
	return nil
}
