package bank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfrye1212/digitalpulse-tld/internal/fees"
	"github.com/kfrye1212/digitalpulse-tld/pkg/testutil"
)

func TestInMemoryBank(t *testing.T) {
	ctx := context.Background()
	alice := testutil.Wallet(0x01)
	bob := testutil.Wallet(0x02)

	t.Run("unknown wallets have a zero balance", func(t *testing.T) {
		b := NewInMemory()
		balance, err := b.Balance(ctx, alice)
		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("transfer moves exactly the amount", func(t *testing.T) {
		b := NewInMemory()
		require.NoError(t, b.Credit(ctx, alice, 100))
		require.NoError(t, b.Transfer(ctx, alice, bob, 30))

		aliceBalance, _ := b.Balance(ctx, alice)
		bobBalance, _ := b.Balance(ctx, bob)
		assert.Equal(t, uint64(70), aliceBalance)
		assert.Equal(t, uint64(30), bobBalance)
	})

	t.Run("transfer fails without sufficient funds", func(t *testing.T) {
		b := NewInMemory()
		require.NoError(t, b.Credit(ctx, alice, 10))
		err := b.Transfer(ctx, alice, bob, 11)
		require.ErrorIs(t, err, fees.ErrInsufficientFunds)
	})

	t.Run("snapshot and restore revert balances", func(t *testing.T) {
		b := NewInMemory()
		require.NoError(t, b.Credit(ctx, alice, 100))
		snap := b.Snapshot()

		require.NoError(t, b.Transfer(ctx, alice, bob, 100))
		b.Restore(snap)

		aliceBalance, _ := b.Balance(ctx, alice)
		bobBalance, _ := b.Balance(ctx, bob)
		assert.Equal(t, uint64(100), aliceBalance)
		assert.Zero(t, bobBalance)
	})
}
