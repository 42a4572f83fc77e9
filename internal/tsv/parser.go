// Package tsv parses the tab-separated sales files accepted by the importer.
//
// The expected layout is a header line followed by data lines with six
// columns in fixed order:
//
//	purchaser_name, item_description, item_price, purchase_count,
//	merchant_address, merchant_name
//
// Columns are matched by position; the header's content is ignored and only
// shifts row numbering (header = row 1, first data row = row 2). Optional
// double-quote field quoting is honored.
package tsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Column positions in a data line.
const (
	colPurchaserName = iota
	colItemDescription
	colItemPrice
	colPurchaseCount
	colMerchantAddress
	colMerchantName
	columnCount
)

// Row is one candidate data row. String fields are trimmed; an empty string
// means the field was absent. Prices are integer cents; a blank or
// non-numeric price parses to 0 cents and is rejected downstream rather than
// treated as a parse error, and the same holds for PurchaseCount.
type Row struct {
	LineNumber      int // 1-based source position, header counted as line 1
	PurchaserName   string
	ItemDescription string
	ItemPrice       int64
	PurchaseCount   int
	MerchantAddress string
	MerchantName    string
}

// Parser reads candidate rows from a sales file.
type Parser struct{}

// NewParser returns a ready-to-use parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the whole stream and returns its candidate rows in order.
// Lines whose every field is blank after trimming are skipped entirely and do
// not advance row numbering. A malformed or unreadable stream is a hard
// failure returned before any row-level concern applies.
func (p *Parser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	// Header line: content ignored, only offsets row numbering.
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if isBlank(record) {
			continue
		}
		row := parseRecord(record)
		row.LineNumber = len(rows) + 2
		rows = append(rows, row)
	}
	return rows, nil
}

// parseRecord maps a raw record onto a Row by column position. Records
// shorter than six columns leave the missing fields absent.
func parseRecord(record []string) Row {
	return Row{
		PurchaserName:   field(record, colPurchaserName),
		ItemDescription: field(record, colItemDescription),
		ItemPrice:       ParsePriceCents(field(record, colItemPrice)),
		PurchaseCount:   parseCount(field(record, colPurchaseCount)),
		MerchantAddress: field(record, colMerchantAddress),
		MerchantName:    field(record, colMerchantName),
	}
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParsePriceCents converts a raw price string to integer cents. The value is
// parsed as a float, multiplied by 100 and truncated toward zero, so "10.0"
// becomes 1000 and "0.99" becomes 99. Blank or non-numeric input yields 0,
// which row validation rejects as a non-positive price.
func ParsePriceCents(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	cents := f * 100
	// NaN, infinities and values past the int64 range convert
	// unpredictably; treat them like non-numeric input.
	if math.IsNaN(cents) || cents >= math.MaxInt64 || cents <= math.MinInt64 {
		return 0
	}
	return int64(cents)
}

// parseCount converts a raw purchase count to an integer; non-numeric or
// absent input yields 0 and fails validation downstream.
func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
