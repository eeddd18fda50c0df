package ttlcache

import (
	"github.com/redis/go-redis/v9"
)

// NewStore picks the durable Redis store when a client is available and falls
// back to the in-memory store otherwise.
func NewStore(client *redis.Client, opts ...Option) Store {
	if client == nil {
		o := buildOptions(opts)
		o.logger.Warn("redis not configured, ttl cache is process-local")
		return NewMemoryStore(opts...)
	}
	return NewRedisStore(client, opts...)
}
