//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kfrye1212/digitalpulse-tld/internal/ledger/cache"
	"github.com/kfrye1212/digitalpulse-tld/internal/ledger/models"
	"github.com/kfrye1212/digitalpulse-tld/pkg/testutil"
	"github.com/kfrye1212/digitalpulse-tld/pkg/testutil/containers"
)

type ResolveCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.ResolveCache
}

func TestResolveCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ResolveCacheSuite))
}

func (s *ResolveCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = cache.NewResolveCache(s.redis.Client, 5*time.Minute)
}

func (s *ResolveCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *ResolveCacheSuite) record(name string) *models.Domain {
	d, err := models.NewDomain(name, "pulse", testutil.Wallet(0x01), testutil.FixedTime)
	s.Require().NoError(err)
	return d
}

func (s *ResolveCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	d := s.record("hello")
	s.Require().NoError(s.cache.Set(ctx, d))

	found, err := s.cache.Get(ctx, "hello", "pulse")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(d.Name, found.Name)
	s.Equal(d.Owner, found.Owner)
	s.True(d.ExpiresAt.Equal(found.ExpiresAt))
}

func (s *ResolveCacheSuite) TestMissReturnsNil() {
	found, err := s.cache.Get(context.Background(), "ghost", "pulse")
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *ResolveCacheSuite) TestKeysNormalizeCase() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, s.record("mixed")))

	found, err := s.cache.Get(ctx, "MIXED", "PULSE")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal("mixed", found.Name)
}

func (s *ResolveCacheSuite) TestInvalidate() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, s.record("stale")))
	s.Require().NoError(s.cache.Invalidate(ctx, "stale", "pulse"))

	found, err := s.cache.Get(ctx, "stale", "pulse")
	s.Require().NoError(err)
	s.Nil(found)
}
