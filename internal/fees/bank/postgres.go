package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kfrye1212/digitalpulse-tld/internal/fees"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
)

// Postgres keeps wallet balances in a table. Transfers run against the
// transaction carried in context, so they commit or roll back with the
// surrounding operation.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (b *Postgres) querier(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return b.db
}

// Credit adds funds to a wallet, creating its row if absent.
func (b *Postgres) Credit(ctx context.Context, wallet id.WalletID, amount uint64) error {
	_, err := b.querier(ctx).ExecContext(ctx, `
		INSERT INTO wallet_balances (wallet, balance) VALUES ($1, $2)
		ON CONFLICT (wallet) DO UPDATE SET balance = wallet_balances.balance + EXCLUDED.balance`,
		wallet[:], int64(amount),
	)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	return nil
}

func (b *Postgres) Balance(ctx context.Context, wallet id.WalletID) (uint64, error) {
	var balance int64
	err := b.querier(ctx).QueryRowContext(ctx,
		`SELECT balance FROM wallet_balances WHERE wallet = $1`,
		wallet[:],
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return uint64(balance), nil
}

func (b *Postgres) Transfer(ctx context.Context, from, to id.WalletID, amount uint64) error {
	q := b.querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE wallet_balances SET balance = balance - $2
		WHERE wallet = $1 AND balance >= $2`,
		from[:], int64(amount),
	)
	if err != nil {
		return fmt.Errorf("debit wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit wallet: %w", err)
	}
	if affected == 0 {
		return fees.ErrInsufficientFunds
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO wallet_balances (wallet, balance) VALUES ($1, $2)
		ON CONFLICT (wallet) DO UPDATE SET balance = wallet_balances.balance + EXCLUDED.balance`,
		to[:], int64(amount),
	)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	return nil
}
