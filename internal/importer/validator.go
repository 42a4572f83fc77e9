// Package importer implements the sales import pipeline: row validation,
// entity resolution, sale aggregation and the import lifecycle state machine.
package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vendasapp/sales-import/internal/tsv"
)

// RowError carries every rule violation found on a single row.
type RowError struct {
	LineNumber int
	Messages   []string
}

func (e RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.LineNumber, strings.Join(e.Messages, ", "))
}

// ValidateRow applies every per-row business rule and returns the violations
// in rule order. Rules do not short-circuit: a row missing several fields
// reports all of them at once.
func ValidateRow(row tsv.Row) []string {
	var msgs []string
	if row.PurchaserName == "" {
		msgs = append(msgs, "purchaser name is required")
	}
	if row.ItemDescription == "" {
		msgs = append(msgs, "item description is required")
	}
	if row.ItemPrice <= 0 {
		msgs = append(msgs, "item price must be greater than 0")
	}
	if row.PurchaseCount <= 0 {
		msgs = append(msgs, "purchase count must be greater than 0")
	}
	if row.MerchantAddress == "" {
		msgs = append(msgs, "merchant address is required")
	}
	if row.MerchantName == "" {
		msgs = append(msgs, "merchant name is required")
	}
	return msgs
}

// ValidateRows enforces the strict whole-file policy: if any row is invalid
// the entire file is rejected, and the error lists every rejected row. A file
// with zero rows is not a validation failure here; the processor treats that
// case separately.
func ValidateRows(rows []tsv.Row) error {
	var invalid []RowError
	for _, row := range rows {
		if msgs := ValidateRow(row); len(msgs) > 0 {
			invalid = append(invalid, RowError{LineNumber: row.LineNumber, Messages: msgs})
		}
	}
	if len(invalid) == 0 {
		return nil
	}

	details := make([]string, len(invalid))
	for i, re := range invalid {
		details[i] = re.Error()
	}
	return errors.New("Invalid data found - " + strings.Join(details, "; "))
}
