// Package export produces XLSX workbooks for completed imports.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/vendasapp/sales-import/internal/repository"
)

// Service is a small façade over the repositories that renders an import's
// sales as XLSX bytes.
type Service struct {
	imports *repository.ImportRepository
	sales   *repository.SaleRepository
	logger  *slog.Logger
}

// NewService creates the export service.
func NewService(imports *repository.ImportRepository, sales *repository.SaleRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{imports: imports, sales: sales, logger: logger}
}

// ExportImportXLSX returns a workbook with one row per sale of the import,
// plus a totals row. The import must exist; an import without sales yields a
// header-only sheet.
func (s *Service) ExportImportXLSX(ctx context.Context, importID uuid.UUID) ([]byte, error) {
	start := time.Now()

	imp, err := s.imports.Get(ctx, importID)
	if err != nil {
		return nil, err
	}

	records, err := s.sales.ListByImport(ctx, importID)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Sales"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// The workbook's default sheet is unused.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Purchaser",
		"Item",
		"Merchant",
		"Merchant Address",
		"Quantity",
		"Unit Price",
		"Gross Revenue",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	row := 2
	for _, rec := range records {
		write(1, row, rec.PurchaserName)
		write(2, row, rec.ItemDescription)
		write(3, row, rec.MerchantName)
		write(4, row, rec.MerchantAddress)
		write(5, row, rec.Quantity)
		write(6, row, centsToUnits(rec.UnitPriceCents))
		write(7, row, centsToUnits(rec.GrossCents))
		row++
	}

	write(1, row, "Total")
	write(7, row, centsToUnits(imp.TotalCents))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("exported import",
		"import_id", importID, "sales", len(records), "duration", time.Since(start))
	return buf.Bytes(), nil
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100.0
}
