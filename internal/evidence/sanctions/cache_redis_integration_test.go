//go:build integration

package sanctions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/evidence/sanctions"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/redis"
	"kycgate/pkg/testutil"
	"kycgate/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	client *redis.Client
	cache  *sanctions.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	client, err := redis.New(context.Background(), config.RedisConfig{
		URL:          containers.Redis(s.T()),
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, nil)
	s.Require().NoError(err)
	s.client = client
	s.cache = sanctions.NewRedisCache(client, 2*time.Second)
}

func (s *RedisCacheSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	key := sanctions.CacheKey(sanctions.Query{Name: "Jane Doe"}, 5)
	matches := []sanctions.Match{
		{ID: testutil.Ptr("Q1"), Name: testutil.Ptr("Jane Doe"), Score: testutil.Ptr(0.91)},
		{ID: testutil.Ptr("Q2")},
	}

	_, err := s.cache.Get(ctx, key)
	s.ErrorIs(err, sanctions.ErrCacheMiss)

	s.Require().NoError(s.cache.Set(ctx, key, matches))
	got, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.Equal(matches, got)

	ttl, err := s.client.TTL(ctx, key).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisCacheSuite) TestEmptyResultIsCached() {
	ctx := context.Background()
	key := sanctions.CacheKey(sanctions.Query{Name: "Nobody"}, 5)

	s.Require().NoError(s.cache.Set(ctx, key, []sanctions.Match{}))
	got, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
}

func (s *RedisCacheSuite) TestExpiry() {
	ctx := context.Background()
	key := sanctions.CacheKey(sanctions.Query{Name: "Short Lived"}, 5)
	short := sanctions.NewRedisCache(s.client, 100*time.Millisecond)

	s.Require().NoError(short.Set(ctx, key, []sanctions.Match{}))
	s.Eventually(func() bool {
		_, err := short.Get(ctx, key)
		return err == sanctions.ErrCacheMiss
	}, 3*time.Second, 50*time.Millisecond)
}
