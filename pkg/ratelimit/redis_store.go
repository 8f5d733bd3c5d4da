package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// decrementScript lowers a live counter without recreating an expired key.
var decrementScript = redis.NewScript(`
local v = tonumber(redis.call('GET', KEYS[1]))
if v and v > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

// RedisStore shares window counters between replicas through Redis.
type RedisStore struct {
	client *redis.Client
	prefix string // e.g: "ratelimit:auth:"
	window time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, window time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, window: window}
}

func (s *RedisStore) Increment(ctx context.Context, key string) (int64, time.Time, error) {
	k := s.prefix + key

	// Atomic increment plus remaining lifetime of the window
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}

	ttl := pttl.Val()
	if ttl < 0 { // first hit of the window, no expiry yet
		if err := s.client.PExpire(ctx, k, s.window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		ttl = s.window
	}
	return incr.Val(), time.Now().Add(ttl), nil
}

func (s *RedisStore) Decrement(ctx context.Context, key string) error {
	return decrementScript.Run(ctx, s.client, []string{s.prefix + key}).Err()
}
