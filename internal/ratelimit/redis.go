package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a sliding-window limiter backed by a Redis sorted set per
// key. The prune-check-append sequence runs inside a Lua script so that
// concurrent callers cannot race between the GET and the add, the same
// pattern we use for all Redis counters.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
}

// Lua script for an atomic sliding-window check. Members are unique
// "<micros>-<seq>" strings scored by event time in microseconds.
const slidingWindowLuaScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)

local count = redis.call("ZCARD", key)
if count >= limit then
    return 0
end

redis.call("ZADD", key, now, now .. "-" .. redis.call("INCR", key .. ":seq"))
redis.call("PEXPIRE", key, math.ceil(window / 1000) + 1000)
redis.call("PEXPIRE", key .. ":seq", math.ceil(window / 1000) + 1000)
return 1
`

// NewRedisLimiter creates a limiter with a pre-compiled Lua script.
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(slidingWindowLuaScript),
	}
}

// NewRedisLimiterFromURL creates a limiter by connecting to Redis.
func NewRedisLimiterFromURL(redisURL string) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Printf("[ratelimit] Connected to Redis at %s", redisURL)

	return NewRedisLimiter(client), nil
}

// Allow atomically checks and records one event for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMicro()

	res, err := l.script.Run(ctx, l.client,
		[]string{"ratelimit:" + key},
		now,
		window.Microseconds(),
		limit,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return res == 1, nil
}

// Close closes the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
