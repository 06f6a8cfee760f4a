package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kfrye1212/digitalpulse-tld/internal/registry/models"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
	"github.com/kfrye1212/digitalpulse-tld/pkg/testutil"
)

type RegistryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *RegistryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestRegistryStoreSuite(t *testing.T) {
	suite.Run(t, new(RegistryStoreSuite))
}

func (s *RegistryStoreSuite) newRegistry() *models.Registry {
	return &models.Registry{Authority: testutil.Wallet(0x01), Treasury: testutil.Wallet(0x02)}
}

func (s *RegistryStoreSuite) TestSingletonSemantics() {
	s.Run("creates and reads back the singleton", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newRegistry()))

		found, err := s.store.Get(s.ctx)
		s.Require().NoError(err)
		s.Equal(testutil.Wallet(0x01), found.Authority)
	})

	s.Run("second create fails with occupied key", func() {
		err := s.store.Create(s.ctx, s.newRegistry())
		s.Require().ErrorIs(err, sentinel.ErrKeyOccupied)
	})
}

func (s *RegistryStoreSuite) TestGetBeforeCreate() {
	_, err := s.store.Get(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RegistryStoreSuite) TestUpdate() {
	s.Run("persists counter changes", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newRegistry()))

		r, err := s.store.Get(s.ctx)
		s.Require().NoError(err)
		r.TotalTLDs = 3
		s.Require().NoError(s.store.Update(s.ctx, r))

		found, err := s.store.Get(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(3), found.TotalTLDs)
	})

	s.Run("returns ErrNotFound before initialization", func() {
		empty := NewInMemory()
		err := empty.Update(s.ctx, s.newRegistry())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *RegistryStoreSuite) TestSnapshotRestore() {
	s.Require().NoError(s.store.Create(s.ctx, s.newRegistry()))
	snap := s.store.Snapshot()

	r, err := s.store.Get(s.ctx)
	s.Require().NoError(err)
	r.TotalDomains = 9
	s.Require().NoError(s.store.Update(s.ctx, r))

	s.store.Restore(snap)

	found, err := s.store.Get(s.ctx)
	s.Require().NoError(err)
	s.Zero(found.TotalDomains)
}
