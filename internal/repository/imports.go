package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendasapp/sales-import/internal/entity"
	"github.com/vendasapp/sales-import/internal/importer"
)

// ErrImportNotFound is returned when an import id does not exist.
var ErrImportNotFound = errors.New("sales import not found")

// ImportSummary is an import plus its sales count, for listings.
type ImportSummary struct {
	Import     entity.Import
	SalesCount int
}

// DashboardStats aggregates revenue across completed imports.
type DashboardStats struct {
	LastGrossCents  int64
	TotalGrossCents int64
	Recent          []ImportSummary
}

// ImportRepository persists imports and owns the lifecycle writes the
// processor depends on.
type ImportRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ importer.ImportStore = (*ImportRepository)(nil)

// NewImportRepository creates the repository.
func NewImportRepository(pool *pgxpool.Pool, logger *slog.Logger) *ImportRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportRepository{pool: pool, logger: logger}
}

// Create stores a new pending import for an uploaded file.
func (r *ImportRepository) Create(ctx context.Context, filename, filePath string) (*entity.Import, error) {
	imp := &entity.Import{
		ID:        uuid.New(),
		Filename:  filename,
		FilePath:  filePath,
		Status:    entity.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO imports (id, filename, file_path, status, total_cents, created_at)
		 VALUES ($1, $2, $3, $4, 0, $5)`,
		imp.ID, imp.Filename, imp.FilePath, int(imp.Status), imp.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create import", "filename", filename, "error", err)
		return nil, fmt.Errorf("create import: %w", err)
	}
	return imp, nil
}

// Get loads one import by id.
func (r *ImportRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Import, error) {
	imp := &entity.Import{}
	var status int
	err := r.pool.QueryRow(ctx,
		`SELECT id, filename, file_path, status, total_cents, created_at
		 FROM imports WHERE id = $1`, id).
		Scan(&imp.ID, &imp.Filename, &imp.FilePath, &status, &imp.TotalCents, &imp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrImportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import: %w", err)
	}
	imp.Status = entity.ImportStatus(status)
	return imp, nil
}

// SetStatus transitions the import's lifecycle status. The write is guarded
// by the legal-transition predicate so the forward-only state machine holds
// even under concurrent writers. It intentionally runs outside any commit
// transaction: the processing marker must survive a later abort.
func (r *ImportRepository) SetStatus(ctx context.Context, id uuid.UUID, status entity.ImportStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE imports SET status = $2 WHERE id = $1 AND status = ANY($3)`,
		id, int(status), legalFrom(status))
	if err != nil {
		return fmt.Errorf("set import status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set import status: no legal transition to %s for import %s", status, id)
	}
	return nil
}

// legalFrom lists the source statuses from which next is reachable.
func legalFrom(next entity.ImportStatus) []int {
	var from []int
	for s := entity.StatusPending; s <= entity.StatusFailed; s++ {
		if s.CanTransition(next) {
			from = append(from, int(s))
		}
	}
	return from
}

// CommitResult finalizes a successful import in one atomic transaction: all
// sale rows, the aggregate revenue, the finalized filename and the completed
// status land together or not at all.
func (r *ImportRepository) CommitResult(ctx context.Context, id uuid.UUID, filename string, totalCents int64, sales []*entity.Sale) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"transaction_records"},
		[]string{"id", "purchaser_id", "item_id", "merchant_id", "import_id", "unit_price_cents", "quantity", "gross_cents", "created_at"},
		pgx.CopyFromSlice(len(sales), func(i int) ([]any, error) {
			s := sales[i]
			return []any{s.ID, s.PurchaserID, s.ItemID, s.MerchantID, s.ImportID, s.UnitPriceCents, s.Quantity, s.GrossCents, now}, nil
		}))
	if err != nil {
		return fmt.Errorf("insert transaction records: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE imports SET status = $2, total_cents = $3, filename = $4
		 WHERE id = $1 AND status = $5`,
		id, int(entity.StatusCompleted), totalCents, filename, int(entity.StatusProcessing))
	if err != nil {
		return fmt.Errorf("finalize import: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finalize import: import %s is not in the processing state", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// List returns imports newest first, each with its sales count.
func (r *ImportRepository) List(ctx context.Context, limit, offset int) ([]ImportSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT i.id, i.filename, i.file_path, i.status, i.total_cents, i.created_at,
		        COUNT(t.id) AS sales_count
		 FROM imports i
		 LEFT JOIN transaction_records t ON t.import_id = i.id
		 GROUP BY i.id
		 ORDER BY i.created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// Delete removes an import; its transaction records go with it via the
// cascading foreign key. Shared entities are never touched.
func (r *ImportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM imports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete import: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrImportNotFound
	}
	return nil
}

// Dashboard computes revenue figures over completed imports.
func (r *ImportRepository) Dashboard(ctx context.Context, recentLimit int) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_cents), 0) FROM imports WHERE status = $1`,
		int(entity.StatusCompleted)).Scan(&stats.TotalGrossCents)
	if err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(
		    (SELECT total_cents FROM imports WHERE status = $1 ORDER BY created_at DESC LIMIT 1),
		    0)`,
		int(entity.StatusCompleted)).Scan(&stats.LastGrossCents)
	if err != nil {
		return nil, fmt.Errorf("dashboard last income: %w", err)
	}

	stats.Recent, err = r.List(ctx, recentLimit, 0)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func scanSummaries(rows pgx.Rows) ([]ImportSummary, error) {
	var out []ImportSummary
	for rows.Next() {
		var s ImportSummary
		var status int
		if err := rows.Scan(&s.Import.ID, &s.Import.Filename, &s.Import.FilePath,
			&status, &s.Import.TotalCents, &s.Import.CreatedAt, &s.SalesCount); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		s.Import.Status = entity.ImportStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}
