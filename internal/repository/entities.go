package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendasapp/sales-import/internal/entity"
	"github.com/vendasapp/sales-import/internal/importer"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

// EntityRepository resolves natural keys to canonical purchaser, item and
// merchant rows. Lookup-or-create relies on the unique constraints declared
// on the key columns plus a re-lookup on conflict, so concurrent imports
// racing on the same key converge on one identity without in-process locks.
type EntityRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ importer.EntityResolver = (*EntityRepository)(nil)

// NewEntityRepository creates the repository.
func NewEntityRepository(pool *pgxpool.Pool, logger *slog.Logger) *EntityRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntityRepository{pool: pool, logger: logger}
}

// FindOrCreatePurchaser returns the canonical purchaser for name, creating it
// on first sight. The key is validated before any row is written.
func (r *EntityRepository) FindOrCreatePurchaser(ctx context.Context, name string) (*entity.Purchaser, error) {
	p := &entity.Purchaser{Name: name}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	id, err := r.findOrCreate(ctx,
		`SELECT id FROM purchasers WHERE name = $1`,
		`INSERT INTO purchasers (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING RETURNING id`,
		[]any{name},
	)
	if err != nil {
		return nil, fmt.Errorf("find or create purchaser: %w", err)
	}
	p.ID = id
	return p, nil
}

// FindOrCreateItem returns the canonical item for description.
func (r *EntityRepository) FindOrCreateItem(ctx context.Context, description string) (*entity.Item, error) {
	it := &entity.Item{Description: description}
	if err := it.Validate(); err != nil {
		return nil, err
	}

	id, err := r.findOrCreate(ctx,
		`SELECT id FROM items WHERE description = $1`,
		`INSERT INTO items (id, description) VALUES ($1, $2) ON CONFLICT (description) DO NOTHING RETURNING id`,
		[]any{description},
	)
	if err != nil {
		return nil, fmt.Errorf("find or create item: %w", err)
	}
	it.ID = id
	return it, nil
}

// FindOrCreateMerchant returns the canonical merchant for the (name, address)
// pair.
func (r *EntityRepository) FindOrCreateMerchant(ctx context.Context, name, address string) (*entity.Merchant, error) {
	m := &entity.Merchant{Name: name, Address: address}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	id, err := r.findOrCreate(ctx,
		`SELECT id FROM merchants WHERE name = $1 AND address = $2`,
		`INSERT INTO merchants (id, name, address) VALUES ($1, $2, $3) ON CONFLICT (name, address) DO NOTHING RETURNING id`,
		[]any{name, address},
	)
	if err != nil {
		return nil, fmt.Errorf("find or create merchant: %w", err)
	}
	m.ID = id
	return m, nil
}

// findOrCreate is the shared lookup-or-create step: select by key, insert
// with ON CONFLICT DO NOTHING on a miss, and re-select when a concurrent
// caller won the insert race. keyArgs are the natural key columns in query
// order; the insert statement takes a fresh id followed by the same args.
func (r *EntityRepository) findOrCreate(ctx context.Context, selectSQL, insertSQL string, keyArgs []any) (uuid.UUID, error) {
	var id uuid.UUID

	err := r.pool.QueryRow(ctx, selectSQL, keyArgs...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, err
	}

	insertArgs := append([]any{uuid.New()}, keyArgs...)
	err = r.pool.QueryRow(ctx, insertSQL, insertArgs...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) && !isUniqueViolation(err) {
		return uuid.Nil, err
	}

	// Lost the race: the row exists now, the winner's id is canonical.
	if err := r.pool.QueryRow(ctx, selectSQL, keyArgs...).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
