package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// ErrNotFound indicates that the account has no stored portfolio.
var ErrNotFound = errors.New("portfolio not found")

// Record is one stored portfolio version.
type Record struct {
	ID          string           `json:"id"`
	AccountSlug string           `json:"accountSlug"`
	Broker      domain.BrokerID  `json:"broker"`
	Portfolio   domain.Portfolio `json:"portfolio"`
	ImportedAt  time.Time        `json:"importedAt"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Repository defines persistent storage for imported portfolios.
type Repository interface {
	Save(ctx context.Context, slug string, p domain.Portfolio) error
	Latest(ctx context.Context, slug string) (*Record, error)
	List(ctx context.Context, slug string, limit int) ([]Record, error)
	EnsureAccount(ctx context.Context, slug, name string) error
}

// PgRepository implements Repository with PostgreSQL, keeping each version as JSONB.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL portfolio repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, slug string, p domain.Portfolio) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling portfolio: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO portfolio_versions (id, account_id, broker, imported_at, data)
		 SELECT $1, a.id, $3, $4, $5::jsonb
		 FROM accounts a
		 WHERE a.slug = $2`,
		p.ID, slug, string(p.Broker), p.ImportedAt, data)
	if err != nil {
		return fmt.Errorf("saving portfolio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no account %s", ErrNotFound, slug)
	}
	return nil
}

func (r *PgRepository) Latest(ctx context.Context, slug string) (*Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT pv.id::text, a.slug, pv.broker, pv.data, pv.imported_at, pv.created_at
		 FROM portfolio_versions pv
		 JOIN accounts a ON a.id = pv.account_id
		 WHERE a.slug = $1
		 ORDER BY pv.created_at DESC
		 LIMIT 1`, slug)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest portfolio: %w", err)
	}
	return &rec, nil
}

func (r *PgRepository) List(ctx context.Context, slug string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.pool.Query(ctx,
		`SELECT pv.id::text, a.slug, pv.broker, pv.data, pv.imported_at, pv.created_at
		 FROM portfolio_versions pv
		 JOIN accounts a ON a.id = pv.account_id
		 WHERE a.slug = $1
		 ORDER BY pv.created_at DESC
		 LIMIT $2`, slug, limit)
	if err != nil {
		return nil, fmt.Errorf("listing portfolios: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning portfolio: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating portfolios: %w", err)
	}
	return records, nil
}

func (r *PgRepository) EnsureAccount(ctx context.Context, slug, name string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (slug, name)
		 VALUES ($1, $2)
		 ON CONFLICT (slug) DO UPDATE SET name = $2`,
		slug, name)
	if err != nil {
		return fmt.Errorf("ensuring account %s: %w", slug, err)
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec    Record
		broker string
		data   []byte
	)
	if err := row.Scan(&rec.ID, &rec.AccountSlug, &broker, &data, &rec.ImportedAt, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	rec.Broker = domain.BrokerID(broker)
	if err := json.Unmarshal(data, &rec.Portfolio); err != nil {
		return Record{}, fmt.Errorf("unmarshaling portfolio %s: %w", rec.ID, err)
	}
	return rec, nil
}
