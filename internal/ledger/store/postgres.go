package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kfrye1212/digitalpulse-tld/internal/ledger/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
)

// Postgres persists domain records. The primary key is the deterministic
// record key derived from (name, tld), so duplicate registration maps to a
// unique violation.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Postgres) querier(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Postgres) CreateIfNameAvailable(ctx context.Context, d *models.Domain) error {
	key := id.DomainKey(models.Normalize(d.Name), models.Normalize(d.TLD))
	var assetRef []byte
	if !d.AssetRef.IsZero() {
		assetRef = d.AssetRef[:]
	}
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO domains (record_key, name, tld, owner, registered_at, expires_at, is_active, asset_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key[:], models.Normalize(d.Name), models.Normalize(d.TLD), d.Owner[:],
		d.RegisteredAt, d.ExpiresAt, d.IsActive, assetRef,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrKeyOccupied
		}
		return fmt.Errorf("create domain: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, name, tld string) (*models.Domain, error) {
	key := id.DomainKey(models.Normalize(name), models.Normalize(tld))
	row := s.querier(ctx).QueryRowContext(ctx, `
		SELECT name, tld, owner, registered_at, expires_at, is_active, asset_ref
		FROM domains WHERE record_key = $1`,
		key[:],
	)
	return scanDomain(row)
}

func (s *Postgres) Update(ctx context.Context, d *models.Domain) error {
	key := id.DomainKey(models.Normalize(d.Name), models.Normalize(d.TLD))
	var assetRef []byte
	if !d.AssetRef.IsZero() {
		assetRef = d.AssetRef[:]
	}
	res, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE domains
		SET owner = $2, expires_at = $3, is_active = $4, asset_ref = $5
		WHERE record_key = $1`,
		key[:], d.Owner[:], d.ExpiresAt, d.IsActive, assetRef,
	)
	if err != nil {
		return fmt.Errorf("update domain: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update domain: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByOwner(ctx context.Context, owner id.WalletID) ([]*models.Domain, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT name, tld, owner, registered_at, expires_at, is_active, asset_ref
		FROM domains WHERE owner = $1 ORDER BY tld, name`,
		owner[:],
	)
	if err != nil {
		return nil, fmt.Errorf("list domains by owner: %w", err)
	}
	defer rows.Close()

	var out []*models.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDomain(row rowScanner) (*models.Domain, error) {
	var (
		d        models.Domain
		owner    []byte
		assetRef []byte
	)
	if err := row.Scan(&d.Name, &d.TLD, &owner, &d.RegisteredAt, &d.ExpiresAt, &d.IsActive, &assetRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan domain: %w", err)
	}
	copy(d.Owner[:], owner)
	copy(d.AssetRef[:], assetRef)
	return &d, nil
}
