// Package migrations applies the database schema on startup. Statements are
// idempotent and ordered; new tables or columns are appended, never reordered.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS service_registry (
		record_key    BYTEA PRIMARY KEY,
		authority     BYTEA NOT NULL,
		treasury      BYTEA NOT NULL,
		total_domains BIGINT NOT NULL DEFAULT 0,
		total_tlds    BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS tlds (
		record_key    BYTEA PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		price         BIGINT NOT NULL,
		owner         BYTEA NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		total_domains BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS domains (
		record_key    BYTEA PRIMARY KEY,
		name          TEXT NOT NULL,
		tld           TEXT NOT NULL,
		owner         BYTEA NOT NULL,
		registered_at TIMESTAMPTZ NOT NULL,
		expires_at    TIMESTAMPTZ NOT NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		asset_ref     BYTEA,
		UNIQUE (name, tld)
	)`,
	`CREATE INDEX IF NOT EXISTS domains_owner_idx ON domains (owner)`,
	`CREATE TABLE IF NOT EXISTS wallet_balances (
		wallet  BYTEA PRIMARY KEY,
		balance BIGINT NOT NULL CHECK (balance >= 0)
	)`,
}

// Apply runs every schema statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}
	return nil
}
