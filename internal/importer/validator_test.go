package importer

import (
	"strings"
	"testing"

	"github.com/vendasapp/sales-import/internal/tsv"
)

func validRow() tsv.Row {
	return tsv.Row{
		LineNumber:      2,
		PurchaserName:   "João Silva",
		ItemDescription: "Pepperoni Pizza Slice",
		ItemPrice:       350,
		PurchaseCount:   4,
		MerchantAddress: "987 Fake St",
		MerchantName:    "Bob's Pizza",
	}
}

func TestValidateRow_Valid(t *testing.T) {
	if msgs := ValidateRow(validRow()); len(msgs) != 0 {
		t.Errorf("ValidateRow() = %v, want no violations", msgs)
	}
}

func TestValidateRow_IndividualRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*tsv.Row)
		want   string
	}{
		{"missing purchaser", func(r *tsv.Row) { r.PurchaserName = "" }, "purchaser name is required"},
		{"missing description", func(r *tsv.Row) { r.ItemDescription = "" }, "item description is required"},
		{"zero price", func(r *tsv.Row) { r.ItemPrice = 0 }, "item price must be greater than 0"},
		{"negative price", func(r *tsv.Row) { r.ItemPrice = -150 }, "item price must be greater than 0"},
		{"zero count", func(r *tsv.Row) { r.PurchaseCount = 0 }, "purchase count must be greater than 0"},
		{"negative count", func(r *tsv.Row) { r.PurchaseCount = -1 }, "purchase count must be greater than 0"},
		{"missing address", func(r *tsv.Row) { r.MerchantAddress = "" }, "merchant address is required"},
		{"missing merchant", func(r *tsv.Row) { r.MerchantName = "" }, "merchant name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(&row)
			msgs := ValidateRow(row)
			if len(msgs) != 1 || msgs[0] != tt.want {
				t.Errorf("ValidateRow() = %v, want [%q]", msgs, tt.want)
			}
		})
	}
}

func TestValidateRow_AccumulatesViolations(t *testing.T) {
	msgs := ValidateRow(tsv.Row{LineNumber: 2})
	want := []string{
		"purchaser name is required",
		"item description is required",
		"item price must be greater than 0",
		"purchase count must be greater than 0",
		"merchant address is required",
		"merchant name is required",
	}
	if len(msgs) != len(want) {
		t.Fatalf("got %d violations, want %d: %v", len(msgs), len(want), msgs)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("violation %d = %q, want %q", i, msgs[i], want[i])
		}
	}
}

func TestValidateRows_AllValid(t *testing.T) {
	if err := ValidateRows([]tsv.Row{validRow()}); err != nil {
		t.Errorf("ValidateRows() = %v, want nil", err)
	}
}

func TestValidateRows_NoRows(t *testing.T) {
	if err := ValidateRows(nil); err != nil {
		t.Errorf("ValidateRows(nil) = %v, want nil", err)
	}
}

func TestValidateRows_RejectsWholeFile(t *testing.T) {
	bad := validRow()
	bad.LineNumber = 3
	bad.ItemPrice = 0
	worse := tsv.Row{LineNumber: 5, PurchaserName: "Amy Pond"}

	err := ValidateRows([]tsv.Row{validRow(), bad, worse})
	if err == nil {
		t.Fatal("ValidateRows() expected error")
	}

	want := "Invalid data found - " +
		"Row 3: item price must be greater than 0; " +
		"Row 5: item description is required, item price must be greater than 0, " +
		"purchase count must be greater than 0, merchant address is required, merchant name is required"
	if err.Error() != want {
		t.Errorf("error = %q\nwant    %q", err.Error(), want)
	}
}

func TestRowError_Format(t *testing.T) {
	e := RowError{LineNumber: 4, Messages: []string{"merchant name is required", "merchant address is required"}}
	want := "Row 4: merchant name is required, merchant address is required"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
	if !strings.HasPrefix(e.Error(), "Row 4: ") {
		t.Errorf("row errors must be prefixed with the row number")
	}
}
