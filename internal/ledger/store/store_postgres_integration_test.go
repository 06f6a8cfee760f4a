//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kfrye1212/digitalpulse-tld/internal/ledger/models"
	"github.com/kfrye1212/digitalpulse-tld/internal/ledger/store"
	"github.com/kfrye1212/digitalpulse-tld/internal/platform/migrations"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
	"github.com/kfrye1212/digitalpulse-tld/pkg/testutil"
	"github.com/kfrye1212/digitalpulse-tld/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	store  *store.Postgres
	runner *tx.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(migrations.Apply(context.Background(), s.pg.DB))
	s.store = store.NewPostgres(s.pg.DB)
	s.runner = tx.NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.Exec("TRUNCATE domains")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newDomain(name string, ownerByte byte) *models.Domain {
	d, err := models.NewDomain(name, "pulse", testutil.Wallet(ownerByte), testutil.FixedTime)
	s.Require().NoError(err)
	return d
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	d := s.newDomain("hello", 0x01)
	s.Require().NoError(s.store.CreateIfNameAvailable(ctx, d))

	found, err := s.store.Find(ctx, "HELLO", "pulse")
	s.Require().NoError(err)
	s.Equal(d.Name, found.Name)
	s.Equal(d.Owner, found.Owner)
	s.True(d.ExpiresAt.Equal(found.ExpiresAt))
	s.True(found.AssetRef.IsZero())

	s.Require().ErrorIs(s.store.CreateIfNameAvailable(ctx, d), sentinel.ErrKeyOccupied)
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.Find(context.Background(), "ghost", "pulse")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	d := s.newDomain("mutate", 0x01)
	s.Require().NoError(s.store.CreateIfNameAvailable(ctx, d))

	d.Owner = testutil.Wallet(0x02)
	d.ExpiresAt = d.ExpiresAt.Add(24 * time.Hour)
	s.Require().NoError(s.store.Update(ctx, d))

	found, err := s.store.Find(ctx, "mutate", "pulse")
	s.Require().NoError(err)
	s.Equal(testutil.Wallet(0x02), found.Owner)
	s.True(d.ExpiresAt.Equal(found.ExpiresAt))

	missing := s.newDomain("absent", 0x01)
	s.Require().ErrorIs(s.store.Update(ctx, missing), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByOwner() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreateIfNameAvailable(ctx, s.newDomain("bravo", 0x01)))
	s.Require().NoError(s.store.CreateIfNameAvailable(ctx, s.newDomain("alpha", 0x01)))
	s.Require().NoError(s.store.CreateIfNameAvailable(ctx, s.newDomain("other", 0x02)))

	domains, err := s.store.ListByOwner(ctx, testutil.Wallet(0x01))
	s.Require().NoError(err)
	s.Require().Len(domains, 2)
	s.Equal("alpha", domains[0].Name)
	s.Equal("bravo", domains[1].Name)
}

func (s *PostgresStoreSuite) TestTransactionRollback() {
	ctx := context.Background()
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.CreateIfNameAvailable(txCtx, s.newDomain("doomed", 0x01)); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Require().Error(err)

	_, err = s.store.Find(ctx, "doomed", "pulse")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
