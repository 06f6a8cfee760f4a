package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kfrye1212/digitalpulse-tld/internal/registry/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
)

// Postgres persists the registry singleton. The deterministic record key is
// the primary key, so a second Create hits the unique constraint and maps to
// ErrKeyOccupied.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// querier returns the active transaction when one is carried in context,
// otherwise the pool.
func (s *Postgres) querier(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Postgres) Create(ctx context.Context, r *models.Registry) error {
	key := id.ServiceKey()
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO service_registry (record_key, authority, treasury, total_domains, total_tlds)
		VALUES ($1, $2, $3, $4, $5)`,
		key[:], r.Authority[:], r.Treasury[:], int64(r.TotalDomains), int64(r.TotalTLDs),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrKeyOccupied
		}
		return fmt.Errorf("create registry: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context) (*models.Registry, error) {
	key := id.ServiceKey()
	row := s.querier(ctx).QueryRowContext(ctx, `
		SELECT authority, treasury, total_domains, total_tlds
		FROM service_registry WHERE record_key = $1`,
		key[:],
	)

	var (
		r                   models.Registry
		authority, treasury []byte
		nDomains, nTLDs     int64
	)
	if err := row.Scan(&authority, &treasury, &nDomains, &nTLDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get registry: %w", err)
	}
	copy(r.Authority[:], authority)
	copy(r.Treasury[:], treasury)
	r.TotalDomains = uint64(nDomains)
	r.TotalTLDs = uint64(nTLDs)
	return &r, nil
}

func (s *Postgres) Update(ctx context.Context, r *models.Registry) error {
	key := id.ServiceKey()
	res, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE service_registry
		SET authority = $2, treasury = $3, total_domains = $4, total_tlds = $5
		WHERE record_key = $1`,
		key[:], r.Authority[:], r.Treasury[:], int64(r.TotalDomains), int64(r.TotalTLDs),
	)
	if err != nil {
		return fmt.Errorf("update registry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registry: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
