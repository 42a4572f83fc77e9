package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SaleRecord is a transaction record joined with its entity names, the shape
// the API and the XLSX export present.
type SaleRecord struct {
	ID              uuid.UUID
	PurchaserName   string
	ItemDescription string
	MerchantName    string
	MerchantAddress string
	Quantity        int
	UnitPriceCents  int64
	GrossCents      int64
}

// SaleRepository reads persisted transaction records. Writes happen only
// through ImportRepository.CommitResult, inside the commit transaction.
type SaleRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSaleRepository creates the repository.
func NewSaleRepository(pool *pgxpool.Pool, logger *slog.Logger) *SaleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaleRepository{pool: pool, logger: logger}
}

// ListByImport returns every sale of one import with resolved entity names,
// in insertion order.
func (r *SaleRepository) ListByImport(ctx context.Context, importID uuid.UUID) ([]SaleRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, p.name, it.description, m.name, m.address,
		        t.quantity, t.unit_price_cents, t.gross_cents
		 FROM transaction_records t
		 JOIN purchasers p ON p.id = t.purchaser_id
		 JOIN items it ON it.id = t.item_id
		 JOIN merchants m ON m.id = t.merchant_id
		 WHERE t.import_id = $1
		 ORDER BY t.created_at, t.id`, importID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []SaleRecord
	for rows.Next() {
		var s SaleRecord
		if err := rows.Scan(&s.ID, &s.PurchaserName, &s.ItemDescription,
			&s.MerchantName, &s.MerchantAddress,
			&s.Quantity, &s.UnitPriceCents, &s.GrossCents); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
