// =============================================================================
// Price Compare - Row Normalizer
// =============================================================================
//
// This module converts raw spreadsheet rows into canonical PriceRecords.
//
// ITEM CELL:
//   - blank                      -> key "",            display ""
//   - whole number ("42", "42.0", "4.2e1")
//                                -> key "42",          display 42 (numeric)
//   - fractional number ("42.7") -> key "42" (truncated toward zero),
//                                   display "42.7" (trimmed original text)
//   - anything else (" AB-12 ")  -> key "ab-12",       display "AB-12"
//
//   The same rule applies wherever an item is read, including when a results
//   file is imported again, so a key is stable across round trips.
//
// PRICE CELL:
//   Blank, whitespace-only and non-numeric cells all become 0. A bad price
//   never raises an error.
//
// DESCRIPTION CELL:
//   Copied verbatim.
//
// =============================================================================

package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/price-compare/internal/types"
	"github.com/ginjaninja78/price-compare/internal/validation"
)

// maxExponent bounds the decimal exponent accepted as a number. Cells such
// as "1e999999" are treated as text (items) or zero (prices) instead of
// being expanded digit by digit.
const maxExponent = 64

// =============================================================================
// CELL PARSERS
// =============================================================================

// ParseNumber interprets a cell as a decimal number. It accepts plain and
// exponent notation ("10.5", "-3", "1.2e3") and rejects everything else,
// including NaN and infinities.
func ParseNumber(cell string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, false
	}

	return d, true
}

// ParsePrice is a total function: it returns the cell's numeric value, or 0
// when the cell is blank or not a number.
func ParsePrice(cell string) decimal.Decimal {
	d, ok := ParseNumber(cell)
	if !ok {
		return decimal.Zero
	}
	return d
}

// ParseItem derives the matching key and the display form of an item cell.
func ParseItem(cell string) (string, types.DisplayItem) {
	text := strings.TrimSpace(cell)
	if text == "" {
		return "", types.DisplayItem{}
	}

	if d, ok := ParseNumber(text); ok {
		whole := d.Truncate(0)
		key := whole.String()
		if d.Equal(whole) {
			return key, types.DisplayItem{Text: key, Numeric: true}
		}
		return key, types.DisplayItem{Text: text}
	}

	return strings.ToLower(text), types.DisplayItem{Text: text}
}

// ItemKey returns only the matching key of an item cell.
func ItemKey(cell string) string {
	key, _ := ParseItem(cell)
	return key
}

// =============================================================================
// ROW NORMALIZATION
// =============================================================================

// Normalize converts one raw row into a PriceRecord.
//
// PARAMETERS:
//   - row: The raw row, carrying its header labels.
//   - m: The mapping of the file the row came from.
//
// RETURNS:
//   - The normalized record. The function is pure.
//   - A *types.ColumnNotFoundError if a mapped column is not in the row.
func Normalize(row types.RawRow, m types.SourceMapping) (types.PriceRecord, error) {
	if err := validation.CheckColumns(m, row.Headers); err != nil {
		return types.PriceRecord{}, err
	}
	return normalizeRow(row, m), nil
}

// NormalizeTable converts every row of a table. The mapping is checked once
// against the table's header; a missing column fails the whole table and no
// records are returned.
func NormalizeTable(table *types.Table, m types.SourceMapping) ([]types.PriceRecord, error) {
	if err := validation.CheckColumns(m, table.Headers); err != nil {
		return nil, err
	}

	records := make([]types.PriceRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, normalizeRow(row, m))
	}

	return records, nil
}

// normalizeRow assumes the mapping has already been checked.
func normalizeRow(row types.RawRow, m types.SourceMapping) types.PriceRecord {
	itemCell, _ := row.Cell(m.ItemColumn)
	descCell, _ := row.Cell(m.DescriptionColumn)
	priceCell, _ := row.Cell(m.PriceColumn)

	key, display := ParseItem(itemCell)

	return types.PriceRecord{
		ItemKey:     key,
		Item:        display,
		Description: descCell,
		Price:       ParsePrice(priceCell),
		SourceFile:  m.FileID,
	}
}
