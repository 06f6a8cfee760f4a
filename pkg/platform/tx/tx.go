// Package tx provides the transactional boundary every mutating operation
// runs inside. An operation either commits in full or has no observable
// effect; services never implement compensation logic of their own.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// Runner executes a function atomically. The context passed to fn carries
// whatever the implementation needs to scope store access to the transaction.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}
