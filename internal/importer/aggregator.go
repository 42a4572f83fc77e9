package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vendasapp/sales-import/internal/entity"
	"github.com/vendasapp/sales-import/internal/tsv"
)

// Aggregator turns accepted rows into sale records with resolved entities and
// accumulates the import's total revenue.
type Aggregator struct {
	resolver EntityResolver
	logger   *slog.Logger
}

// NewAggregator creates an aggregator backed by the given resolver.
func NewAggregator(resolver EntityResolver, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{resolver: resolver, logger: logger}
}

// AggregateResult is the outcome of a successful aggregation.
type AggregateResult struct {
	Sales      []*entity.Sale
	TotalCents int64
	Created    int
}

// Aggregate resolves the three entities for every accepted row and builds a
// sale record per row, recomputing gross revenue as quantity × unit price.
// A row whose entity resolution fails is counted but produces no record.
//
// The policy is strict: if zero records were built, or if any row failed even
// though others succeeded, the whole operation fails.
func (a *Aggregator) Aggregate(ctx context.Context, importID uuid.UUID, rows []tsv.Row) (*AggregateResult, error) {
	var (
		sales      []*entity.Sale
		totalCents int64
		failed     int
		rowErrors  []string
	)

	for _, row := range rows {
		sale, err := a.buildSale(ctx, importID, row)
		if err != nil {
			failed++
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %v", row.LineNumber, err))
			a.logger.Warn("failed to create sale", "import_id", importID, "row", row.LineNumber, "error", err)
			continue
		}
		sales = append(sales, sale)
		totalCents += sale.GrossCents
	}

	if len(sales) == 0 {
		return nil, fmt.Errorf("All sales failed validation or creation: %s", strings.Join(rowErrors, "; "))
	}
	if failed > 0 {
		return nil, fmt.Errorf("%d sales failed validation or creation: %s", failed, strings.Join(rowErrors, "; "))
	}

	return &AggregateResult{
		Sales:      sales,
		TotalCents: totalCents,
		Created:    len(sales),
	}, nil
}

// buildSale resolves all three entities for the row and builds the record.
// Entity creation happens against the globally shared identity tables and is
// not rolled back when the import later fails.
func (a *Aggregator) buildSale(ctx context.Context, importID uuid.UUID, row tsv.Row) (*entity.Sale, error) {
	purchaser, err := a.resolver.FindOrCreatePurchaser(ctx, row.PurchaserName)
	if err != nil {
		return nil, err
	}
	item, err := a.resolver.FindOrCreateItem(ctx, row.ItemDescription)
	if err != nil {
		return nil, err
	}
	merchant, err := a.resolver.FindOrCreateMerchant(ctx, row.MerchantName, row.MerchantAddress)
	if err != nil {
		return nil, err
	}

	return entity.NewSale(importID, purchaser.ID, item.ID, merchant.ID, row.PurchaseCount, row.ItemPrice), nil
}
