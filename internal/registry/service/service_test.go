package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kfrye1212/digitalpulse-tld/internal/audit"
	"github.com/kfrye1212/digitalpulse-tld/internal/registry/store"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
	"github.com/kfrye1212/digitalpulse-tld/pkg/testutil"
)

type RegistryServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	audits  *audit.InMemoryStore
	service *Service

	authority id.WalletID
	treasury  id.WalletID
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.audits = audit.NewInMemoryStore()
	runner := tx.NewInMemory(s.store)
	s.service = New(s.store, runner,
		WithAuditPublisher(audit.NewPublisher(s.audits, nil)),
	)
	s.authority = testutil.Wallet(0xaa)
	s.treasury = testutil.Wallet(0xbb)
}

func (s *RegistryServiceSuite) initialize() {
	_, err := s.service.Initialize(testutil.Context(), s.authority, s.treasury)
	s.Require().NoError(err)
}

func (s *RegistryServiceSuite) TestInitialize() {
	s.Run("creates the singleton with zeroed counters", func() {
		r, err := s.service.Initialize(testutil.Context(), s.authority, s.treasury)
		s.Require().NoError(err)
		s.Equal(s.authority, r.Authority)
		s.Equal(s.treasury, r.Treasury)
		s.Zero(r.TotalDomains)
		s.Zero(r.TotalTLDs)
	})

	s.Run("second initialization fails", func() {
		_, err := s.service.Initialize(testutil.Context(), s.authority, s.treasury)
		s.Require().ErrorIs(err, ErrAlreadyInitialized)
	})

	s.Run("rejects zero wallets", func() {
		_, err := New(store.NewInMemory(), tx.NewInMemory()).
			Initialize(testutil.Context(), id.WalletID{}, s.treasury)
		s.Require().Error(err)
	})
}

func (s *RegistryServiceSuite) TestUpdateAuthority() {
	s.initialize()
	newAuthority := testutil.Wallet(0xcc)

	s.Run("authority may rotate itself", func() {
		r, err := s.service.UpdateAuthority(testutil.Context(), s.authority, newAuthority)
		s.Require().NoError(err)
		s.Equal(newAuthority, r.Authority)
	})

	s.Run("emits a change notification with old and new values", func() {
		events, err := s.audits.ListAll(testutil.Context())
		s.Require().NoError(err)

		var found bool
		for _, e := range events {
			if e.Action == audit.ActionAuthorityChanged {
				found = true
				s.Equal(s.authority.String(), e.Old)
				s.Equal(newAuthority.String(), e.New)
			}
		}
		s.True(found, "expected an authority_changed event")
	})

	s.Run("old authority is no longer privileged", func() {
		_, err := s.service.UpdateAuthority(testutil.Context(), s.authority, testutil.Wallet(0xdd))
		s.Require().ErrorIs(err, ErrNotAuthority)
	})
}

func (s *RegistryServiceSuite) TestUpdateTreasury() {
	s.initialize()
	newTreasury := testutil.Wallet(0xee)

	s.Run("non-authority callers are rejected", func() {
		_, err := s.service.UpdateTreasury(testutil.Context(), testutil.Wallet(0x99), newTreasury)
		s.Require().ErrorIs(err, ErrNotAuthority)

		r, err := s.service.Get(testutil.Context())
		s.Require().NoError(err)
		s.Equal(s.treasury, r.Treasury, "rejected update must not mutate state")
	})

	s.Run("authority replaces the treasury", func() {
		r, err := s.service.UpdateTreasury(testutil.Context(), s.authority, newTreasury)
		s.Require().NoError(err)
		s.Equal(newTreasury, r.Treasury)
	})
}

func (s *RegistryServiceSuite) TestGetBeforeInitialize() {
	_, err := s.service.Get(testutil.Context())
	s.Require().ErrorIs(err, ErrNotInitialized)
}
