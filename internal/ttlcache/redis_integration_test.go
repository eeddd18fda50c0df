//go:build integration

package ttlcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kayit/internal/ttlcache"
	"kayit/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *ttlcache.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = ttlcache.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	s.store.Set(ctx, "token_expiry_abc", []byte(`{"expiryTime":"2026-03-01T09:10:00Z"}`), time.Minute)

	got, ok := s.store.Get(ctx, "token_expiry_abc")
	s.Require().True(ok)
	s.JSONEq(`{"expiryTime":"2026-03-01T09:10:00Z"}`, string(got))

	ttl, err := s.redis.Client.TTL(ctx, "kayit:token_expiry_abc").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 50*time.Second)
}

func (s *RedisStoreSuite) TestRedisExpiresKey() {
	ctx := context.Background()
	s.store.Set(ctx, "short", []byte("v"), time.Second)

	s.Eventually(func() bool {
		_, ok := s.store.Get(ctx, "short")
		return !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RedisStoreSuite) TestRemoveIsIdempotent() {
	ctx := context.Background()
	s.store.Set(ctx, "k", []byte("v"), time.Minute)
	s.store.Remove(ctx, "k")
	s.store.Remove(ctx, "k")

	_, ok := s.store.Get(ctx, "k")
	s.False(ok)
}
