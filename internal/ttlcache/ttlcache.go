// Package ttlcache is a key/value store with absolute expiry. It backs token
// session persistence and location hierarchy memoization.
//
// Eviction is lazy: an entry whose expiry has passed is removed by the read
// that observes it. There is no background sweeper. Storage failures and
// corrupt entries surface as a miss so callers re-fetch instead of failing.
package ttlcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kayit/pkg/platform/sentinel"
)

// Store is the byte-level contract every backend implements.
type Store interface {
	// Set stores value until now+ttl. A non-positive ttl removes the key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Get returns the value if it has not expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string)
}

// Clock returns the current time; injected for tests.
type Clock func() time.Time

var defaultClock Clock = time.Now

// entry is the persisted envelope. The absolute expiry travels with the value
// so durable stores apply the same clock-based expiry as the memory store.
type entry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

func encodeEntry(e entry) ([]byte, error) {
	return json.Marshal(e)
}

func decodeEntry(raw []byte) (entry, error) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return entry{}, fmt.Errorf("decode cache entry: %w: %w", sentinel.ErrCorrupt, err)
	}
	if e.ExpiresAt.IsZero() {
		return entry{}, fmt.Errorf("cache entry without expiry: %w", sentinel.ErrCorrupt)
	}
	return e, nil
}
