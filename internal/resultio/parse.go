package resultio

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/price-compare/internal/config"
	"github.com/ginjaninja78/price-compare/internal/csvparser"
	"github.com/ginjaninja78/price-compare/internal/normalize"
	"github.com/ginjaninja78/price-compare/internal/types"
)

// =============================================================================
// IMPORT
// =============================================================================

// Parse reads a previously exported results file back into result rows.
//
// The header is matched case-insensitively after trimming. Item, Description
// and Lowest Price are mandatory; Quantity and Source File are optional, so
// both the combined and the per-source layouts import. Extra columns are
// ignored and blank lines are skipped.
//
// Numbers are read with the separators in s: thousands separators are
// removed and the decimal separator is read as ".". Prices that still do not
// parse become 0; quantities that do not parse are left absent.
//
// PARAMETERS:
//   - r: The results file content.
//   - s: The separators the file was written with.
//
// RETURNS:
//   - The rows in file order.
//   - A *types.ImportSchemaError if the file is empty, cannot be read as
//     delimited text, or lacks a mandatory column. Nothing is returned then.
func Parse(r io.Reader, s config.Settings) ([]types.ResultRow, error) {
	if err := s.Validate(); err != nil {
		return nil, &types.ImportSchemaError{Err: err}
	}

	records, err := csvparser.ReadAll(r, s.CSVSeparator)
	if err != nil {
		return nil, &types.ImportSchemaError{Err: err}
	}

	if len(records) == 0 {
		return nil, &types.ImportSchemaError{Missing: []string{HeaderItem, HeaderDescription, HeaderPrice}}
	}

	cols := locateColumns(records[0])
	if missing := cols.missing(); len(missing) > 0 {
		return nil, &types.ImportSchemaError{Missing: missing}
	}

	rows := make([]types.ResultRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if csvparser.IsRowEmpty(record) {
			continue
		}

		key, display := normalize.ParseItem(field(record, cols.item))

		row := types.ResultRow{
			ItemKey:     key,
			Item:        display,
			Description: field(record, cols.description),
			Price:       normalize.ParsePrice(delocalize(field(record, cols.price), s)),
		}

		if q, ok := ParseNumber(field(record, cols.quantity), s); ok {
			row.Quantity = &q
		}

		if source := strings.TrimSpace(field(record, cols.source)); source != "" {
			row.SourceFile = SourceCell(source)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// ParseNumber reads one number written with the separators in s.
func ParseNumber(text string, s config.Settings) (decimal.Decimal, bool) {
	return normalize.ParseNumber(delocalize(text, s))
}

// delocalize rewrites a formatted number into plain notation.
func delocalize(text string, s config.Settings) string {
	text = strings.TrimSpace(text)
	if s.ThousandsSeparator != "" {
		text = strings.ReplaceAll(text, s.ThousandsSeparator, "")
	}
	if s.DecimalSeparator != "." {
		text = strings.Replace(text, s.DecimalSeparator, ".", 1)
	}
	return text
}

// columnIndex holds the position of each known header, -1 when absent.
type columnIndex struct {
	item, description, price, quantity, source int
}

func locateColumns(header []string) columnIndex {
	cols := columnIndex{item: -1, description: -1, price: -1, quantity: -1, source: -1}

	for i, label := range header {
		label = strings.TrimSpace(label)
		switch {
		case cols.item < 0 && strings.EqualFold(label, HeaderItem):
			cols.item = i
		case cols.description < 0 && strings.EqualFold(label, HeaderDescription):
			cols.description = i
		case cols.price < 0 && strings.EqualFold(label, HeaderPrice):
			cols.price = i
		case cols.quantity < 0 && strings.EqualFold(label, HeaderQuantity):
			cols.quantity = i
		case cols.source < 0 && strings.EqualFold(label, HeaderSource):
			cols.source = i
		}
	}

	return cols
}

func (c columnIndex) missing() []string {
	var missing []string
	if c.item < 0 {
		missing = append(missing, HeaderItem)
	}
	if c.description < 0 {
		missing = append(missing, HeaderDescription)
	}
	if c.price < 0 {
		missing = append(missing, HeaderPrice)
	}
	return missing
}

// field returns record[i], or "" when the column is absent or the row is
// short.
func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
