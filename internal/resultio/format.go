// =============================================================================
// Price Compare - Result Formatter
// =============================================================================
//
// This module renders reconciliation results as delimited text. Two layouts
// exist:
//
//   COMBINED (one file per run):
//     Item, Description, Lowest Price, Quantity, Source File
//
//   PER SOURCE (one file per supplier):
//     Item, Description, Lowest Price, Quantity
//
// NUMBER FORMATTING:
//   Prices are written with four fractional digits, the integer part grouped
//   by the thousands separator:
//
//     1234.5  decimal "," thousands "."  ->  1.234,5000
//     1234.5  decimal "." thousands ","  ->  1,234.5000
//
//   Quantities are written as entered (no grouping, no padding) with the
//   decimal separator substituted. A blank quantity stays blank.
//
// The field separator, decimal separator and thousands separator come from
// the caller's Settings; nothing here reads configuration on its own.
//
// =============================================================================

package resultio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/price-compare/internal/config"
	"github.com/ginjaninja78/price-compare/internal/types"
)

// =============================================================================
// LAYOUT
// =============================================================================

// Column headers of the result files.
const (
	HeaderItem        = "Item"
	HeaderDescription = "Description"
	HeaderPrice       = "Lowest Price"
	HeaderQuantity    = "Quantity"
	HeaderSource      = "Source File"
)

// PriceDecimals is the number of fractional digits written for prices.
const PriceDecimals = 4

// CombinedHeader is the header row of the combined results file.
var CombinedHeader = []string{HeaderItem, HeaderDescription, HeaderPrice, HeaderQuantity, HeaderSource}

// SourceHeader is the header row of a per-source results file.
var SourceHeader = []string{HeaderItem, HeaderDescription, HeaderPrice, HeaderQuantity}

// Mode selects which rows a per-source export includes.
type Mode int

const (
	// ModeWithQuantity keeps only rows whose quantity is present and non-zero.
	ModeWithQuantity Mode = iota

	// ModeAll keeps every row.
	ModeAll
)

// ParseMode converts "quantity" / "all" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quantity", "with-quantity":
		return ModeWithQuantity, nil
	case "all":
		return ModeAll, nil
	default:
		return ModeWithQuantity, fmt.Errorf("unknown export mode %q (want \"quantity\" or \"all\")", s)
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

// Format renders rows in the combined layout.
func Format(rows []types.ResultRow, s config.Settings) ([]byte, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, CombinedHeader)
	for _, row := range rows {
		records = append(records, []string{
			row.Item.Text,
			row.Description,
			FormatPrice(row.Price, s),
			FormatQuantity(row.Quantity, s),
			SourceCell(row.SourceFile),
		})
	}
	return writeRecords(records, s)
}

// SourceCell is the Source File value written for a source path: its base
// name, or an empty cell when the row has no source.
func SourceCell(source string) string {
	if source == "" {
		return ""
	}
	return filepath.Base(source)
}

// FormatSource renders rows in the per-source layout, filtered by mode.
// The caller passes the rows of a single source.
func FormatSource(rows []types.ResultRow, s config.Settings, mode Mode) ([]byte, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, SourceHeader)
	for _, row := range FilterRows(rows, mode) {
		records = append(records, []string{
			row.Item.Text,
			row.Description,
			FormatPrice(row.Price, s),
			FormatQuantity(row.Quantity, s),
		})
	}
	return writeRecords(records, s)
}

// FilterRows applies an export mode.
func FilterRows(rows []types.ResultRow, mode Mode) []types.ResultRow {
	if mode == ModeAll {
		return rows
	}
	kept := make([]types.ResultRow, 0, len(rows))
	for _, row := range rows {
		if row.HasQuantity() {
			kept = append(kept, row)
		}
	}
	return kept
}

// writeRecords encodes records with the configured field separator.
func writeRecords(records [][]string, s config.Settings) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = s.FieldRune()

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}

	return buf.Bytes(), nil
}

// FormatPrice renders a price with PriceDecimals fractional digits and the
// configured separators.
func FormatPrice(d decimal.Decimal, s config.Settings) string {
	fixed := d.StringFixed(PriceDecimals)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	return sign + groupThousands(intPart, s.ThousandsSeparator) + s.DecimalSeparator + fracPart
}

// FormatQuantity renders a quantity, or "" when it is absent.
func FormatQuantity(q *decimal.Decimal, s config.Settings) string {
	if q == nil {
		return ""
	}
	return strings.Replace(q.String(), ".", s.DecimalSeparator, 1)
}

// groupThousands inserts sep between every group of three digits, counting
// from the right.
func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
