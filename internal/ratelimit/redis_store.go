package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces limiter keys in Redis.
const KeyPrefix = "ratelimit:"

// incrementScript runs INCR, sets the expiry only on the first hit of a window
// and reports the remaining TTL, all in one round trip. A counter found with
// no expiry gets a fresh window so it cannot lock its caller out for good.
var incrementScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl == -1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisStore is the shared CounterStore backed by Redis.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient builds a client from a redis:// URL. timeout bounds dialing
// and each read and write so a stalled server cannot hold a request.
func NewRedisClient(url string, timeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout
	opts.MaxRetries = -1
	return redis.NewClient(opts), nil
}

// Increment implements CounterStore.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{KeyPrefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script: unexpected reply length %d", len(res))
	}
	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Name implements CounterStore.
func (s *RedisStore) Name() string { return "redis" }
