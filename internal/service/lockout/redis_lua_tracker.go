// Package lockout counts failed sign-ins and locks accounts out.
package lockout

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Policy configures when and for how long an account is locked.
type Policy struct {
	MaxFailedAttempts int
	Duration          time.Duration
	// FailureWindow bounds how long a failure is remembered.
	FailureWindow time.Duration
}

func (p Policy) enabled() bool { return p.MaxFailedAttempts > 0 && p.Duration > 0 }

func (p Policy) window() time.Duration {
	if p.FailureWindow > 0 {
		return p.FailureWindow
	}
	return 24 * time.Hour
}

// RedisLuaTracker keeps counters in Redis so every replica sees the same
// lockout state. Redis errors fail open: sign-in keeps working without
// lockout rather than failing outright.
type RedisLuaTracker struct {
	redis  *redis.Client
	policy Policy
	script *redis.Script
}

// NewRedisLuaTracker returns nil when rdb is nil.
func NewRedisLuaTracker(rdb *redis.Client, policy Policy) *RedisLuaTracker {
	if rdb == nil {
		return nil
	}
	return &RedisLuaTracker{redis: rdb, policy: policy, script: redis.NewScript(luaRecordFailureScript)}
}

// Returns {locked, lock_ms}. Reaching the threshold clears the counter and
// starts the lockout.
const luaRecordFailureScript = `
local fails_key = KEYS[1]
local lock_key = KEYS[2]
local max_failures = tonumber(ARGV[1])
local lock_ms = tonumber(ARGV[2])
local window_ms = tonumber(ARGV[3])

local remaining = redis.call("PTTL", lock_key)
if remaining > 0 then
  return { 1, remaining }
end

local failures = redis.call("INCR", fails_key)
redis.call("PEXPIRE", fails_key, window_ms)

if failures >= max_failures then
  redis.call("DEL", fails_key)
  redis.call("SET", lock_key, "1", "PX", lock_ms)
  return { 1, lock_ms }
end

return { 0, 0 }
`

func failsKey(key string) string { return "lockout:fails:" + key }
func lockKey(key string) string  { return "lockout:until:" + key }

// LockedFor returns the remaining lockout for key.
func (t *RedisLuaTracker) LockedFor(ctx context.Context, key string) (time.Duration, error) {
	if t == nil || !t.policy.enabled() {
		return 0, nil
	}
	d, err := t.redis.PTTL(ctx, lockKey(key)).Result()
	if err != nil {
		slog.Error("lockout ttl lookup failed", slog.String("key", key), slog.Any("error", err))
		return 0, nil
	}
	if d <= 0 {
		return 0, nil
	}
	return d, nil
}

// RecordFailure counts a failed attempt and reports whether the account is
// now locked.
func (t *RedisLuaTracker) RecordFailure(ctx context.Context, key string) (bool, error) {
	if t == nil || !t.policy.enabled() {
		return false, nil
	}
	res, err := t.script.Run(ctx, t.redis, []string{failsKey(key), lockKey(key)},
		t.policy.MaxFailedAttempts, t.policy.Duration.Milliseconds(), t.policy.window().Milliseconds()).Result()
	if err != nil {
		slog.Error("lockout script error", slog.String("key", key), slog.Any("error", err))
		return false, nil
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) < 2 {
		slog.Error("lockout unexpected script result", slog.String("key", key), slog.Any("result", res))
		return false, nil
	}
	locked, _ := vals[0].(int64)
	return locked == 1, nil
}

// Reset forgets prior failures after a successful sign-in.
func (t *RedisLuaTracker) Reset(ctx context.Context, key string) error {
	if t == nil {
		return nil
	}
	if err := t.redis.Del(ctx, failsKey(key)).Err(); err != nil {
		slog.Error("lockout reset failed", slog.String("key", key), slog.Any("error", err))
	}
	return nil
}
