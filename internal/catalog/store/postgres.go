package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kfrye1212/digitalpulse-tld/internal/catalog/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/tx"
)

// Postgres persists namespace records. The primary key is the deterministic
// record key derived from the normalized name, so duplicate creation maps to
// a unique violation.
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

func (s *Postgres) CreateIfNameAvailable(ctx context.Context, t *models.TLD) error {
	key := id.TLDKey(models.Normalize(t.Name))
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO tlds (record_key, name, price, owner, created_at, is_active, total_domains)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key[:], models.Normalize(t.Name), int64(t.Price), t.Owner[:], t.CreatedAt, t.IsActive, int64(t.TotalDomains),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrKeyOccupied
		}
		return fmt.Errorf("create tld: %w", err)
	}
	return nil
}

func (s *Postgres) FindByName(ctx context.Context, name string) (*models.TLD, error) {
	key := id.TLDKey(models.Normalize(name))
	row := s.querier(ctx).QueryRowContext(ctx, `
		SELECT name, price, owner, created_at, is_active, total_domains
		FROM tlds WHERE record_key = $1`,
		key[:],
	)
	return scanTLD(row)
}

func (s *Postgres) Update(ctx context.Context, t *models.TLD) error {
	key := id.TLDKey(models.Normalize(t.Name))
	res, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE tlds
		SET price = $2, owner = $3, is_active = $4, total_domains = $5
		WHERE record_key = $1`,
		key[:], int64(t.Price), t.Owner[:], t.IsActive, int64(t.TotalDomains),
	)
	if err != nil {
		return fmt.Errorf("update tld: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tld: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.TLD, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT name, price, owner, created_at, is_active, total_domains
		FROM tlds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tlds: %w", err)
	}
	defer rows.Close()

	var out []*models.TLD
	for rows.Next() {
		t, err := scanTLD(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTLD(row rowScanner) (*models.TLD, error) {
	var (
		t     models.TLD
		owner []byte
		price int64
		n     int64
	)
	if err := row.Scan(&t.Name, &price, &owner, &t.CreatedAt, &t.IsActive, &n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan tld: %w", err)
	}
	copy(t.Owner[:], owner)
	t.Price = uint64(price)
	t.TotalDomains = uint64(n)
	return &t, nil
}
