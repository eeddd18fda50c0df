package ttlcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "kayit:"

// RedisStore persists entries in Redis so sessions and hierarchies survive
// gateway restarts and are shared between instances. Redis enforces the TTL;
// the envelope expiry is checked as well so the injected clock decides.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	opts   options
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.Cmdable, opts ...Option) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
		opts:   buildOptions(opts),
	}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		s.Remove(ctx, key)
		return
	}
	raw, err := encodeEntry(entry{Value: value, ExpiresAt: s.opts.clock().Add(ttl)})
	if err != nil {
		s.fail(ctx, "set", key, err)
		return
	}
	if err := s.client.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		s.fail(ctx, "set", key, err)
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		s.opts.metrics.IncCacheLookup("miss")
		return nil, false
	}
	if err != nil {
		s.fail(ctx, "get", key, err)
		return nil, false
	}
	e, err := decodeEntry(raw)
	if err != nil {
		s.fail(ctx, "decode", key, err)
		s.Remove(ctx, key)
		return nil, false
	}
	if e.expired(s.opts.clock()) {
		s.Remove(ctx, key)
		s.opts.metrics.IncCacheLookup("expired")
		return nil, false
	}
	s.opts.metrics.IncCacheLookup("hit")
	return e.Value, true
}

func (s *RedisStore) Remove(ctx context.Context, key string) {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.fail(ctx, "remove", key, err)
	}
}

func (s *RedisStore) fail(ctx context.Context, op, key string, err error) {
	s.opts.metrics.IncCacheFailure(op)
	s.opts.logger.WarnContext(ctx, "ttl cache operation degraded",
		"op", op,
		"key", key,
		"error", err,
	)
}
