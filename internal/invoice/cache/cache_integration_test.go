//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"finvoice/internal/invoice"
	"finvoice/internal/invoice/cache"
	"finvoice/pkg/testutil/containers"
)

type CacheSuite struct {
	suite.Suite
	ctx   context.Context
	redis *containers.RedisContainer
	next  *invoice.InMemoryStore
	store *cache.Store
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	s := new(CacheSuite)
	s.redis = containers.NewRedisContainer(t)
	suite.Run(t, s)
}

func (s *CacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.next = invoice.NewInMemoryStore()
	s.store = cache.New(s.next, s.redis.Client)
}

func (s *CacheSuite) create() uint64 {
	id, err := s.store.Create(s.ctx, &invoice.Invoice{
		Amount:   1000,
		DueDate:  100,
		Buyer:    "ST3TEST",
		Supplier: "ST2TEST",
		Currency: invoice.CurrencySTX,
		Status:   invoice.StatusPending,
	})
	s.Require().NoError(err)
	return id
}

func (s *CacheSuite) TestReadThrough() {
	id := s.create()

	// First read populates the cache.
	inv, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(uint64(1000), inv.Amount)

	exists, err := s.redis.Client.Exists(s.ctx, "invoice:0").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)

	// Second read is served from cache even if the backing store moved on.
	backing, err := s.next.FindByID(s.ctx, id)
	s.Require().NoError(err)
	backing.Amount = 9999
	s.Require().NoError(s.next.Update(s.ctx, backing))

	cached, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(uint64(1000), cached.Amount)
}

func (s *CacheSuite) TestUpdateInvalidates() {
	id := s.create()

	inv, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)

	inv.Amount = 2000
	s.Require().NoError(s.store.Update(s.ctx, inv))

	exists, err := s.redis.Client.Exists(s.ctx, "invoice:0").Result()
	s.Require().NoError(err)
	s.Zero(exists)

	fresh, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(uint64(2000), fresh.Amount)
}

func (s *CacheSuite) TestDeleteInvalidates() {
	id := s.create()

	_, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, id))

	exists, err := s.redis.Client.Exists(s.ctx, "invoice:0").Result()
	s.Require().NoError(err)
	s.Zero(exists)
}

func (s *CacheSuite) TestCorruptEntryFallsThrough() {
	id := s.create()

	s.Require().NoError(s.redis.Client.Set(s.ctx, "invoice:0", "not-json", time.Minute).Err())

	inv, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(uint64(1000), inv.Amount)
}
