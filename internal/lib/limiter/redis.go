package limiter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucket refills continuously at rate tokens/sec up to capacity.
// Returns 1 when a token was taken, 0 otherwise.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
	tokens = capacity
	ts = now_ms
end

local elapsed = math.max(0, now_ms - ts)
tokens = math.min(capacity, tokens + (elapsed / 1000) * rate)

local allowed = 0
if tokens >= 1 then
	allowed = 1
	tokens = tokens - 1
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now_ms)
redis.call('EXPIRE', key, ttl)
return allowed
`)

// Redis shares token buckets between every instance pointing at the same server.
type Redis struct {
	rdb    *redis.Client
	prefix string
	rps    float64
	burst  int
	ttl    time.Duration
}

func NewRedis(rdb *redis.Client, prefix string, rps float64, burst int) *Redis {
	// keep a bucket around for as long as it takes to refill completely
	ttl := time.Duration(math.Ceil(float64(burst)/math.Max(rps, 0.001))) * time.Second
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return &Redis{rdb: rdb, prefix: prefix, rps: rps, burst: burst, ttl: ttl}
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	res, err := tokenBucket.Run(
		ctx,
		l.rdb,
		[]string{fmt.Sprintf("%s:%s", l.prefix, key)},
		time.Now().UnixMilli(),
		l.burst,
		l.rps,
		int64(l.ttl/time.Second),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("run token bucket script: %w", err)
	}
	return res == 1, nil
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
