package ttlcache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"kayit/internal/platform/logger"
)

// Typed stores JSON-encoded values of one type under a key prefix.
type Typed[T any] struct {
	store  Store
	prefix string
	logger *slog.Logger
}

// NewTyped creates a typed view over store. Keys are prefix + key.
func NewTyped[T any](store Store, prefix string, log *slog.Logger) *Typed[T] {
	if log == nil {
		log = logger.Discard()
	}
	return &Typed[T]{store: store, prefix: prefix, logger: log}
}

// Set encodes and stores value. Encoding failures are logged and dropped.
func (c *Typed[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "ttl cache value not encodable", "key", c.prefix+key, "error", err)
		return
	}
	c.store.Set(ctx, c.prefix+key, raw, ttl)
}

// Get decodes the stored value. A payload that no longer decodes into T is
// removed and reported as a miss.
func (c *Typed[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, ok := c.store.Get(ctx, c.prefix+key)
	if !ok {
		return zero, false
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.WarnContext(ctx, "ttl cache entry corrupt, evicting", "key", c.prefix+key, "error", err)
		c.store.Remove(ctx, c.prefix+key)
		return zero, false
	}
	return value, true
}

func (c *Typed[T]) Remove(ctx context.Context, key string) {
	c.store.Remove(ctx, c.prefix+key)
}
