// =============================================================================
// Price Compare - Shared Types
// =============================================================================
//
// This package contains the value types shared by every stage of a comparison
// run. Keeping them here avoids import cycles between:
//   - xlsxparser / csvparser  (produce Tables of RawRows)
//   - normalize               (RawRow + SourceMapping -> PriceRecord)
//   - reconcile               (PriceRecord -> ResultRow)
//   - resultio / store        (ResultRow <-> text / database)
//
// =============================================================================

package types

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SOURCE MAPPING
// =============================================================================

// SourceMapping describes how one source file maps onto the canonical record.
// It is built once per file (see validation.NewSourceMapping) and passed by
// value; nothing mutates it after construction.
type SourceMapping struct {
	// FileID identifies the source, normally its path.
	FileID string

	// Sheet is the worksheet to read. Empty means the first sheet.
	// Ignored for delimited sources.
	Sheet string

	// Delimiter is the field separator for delimited sources.
	// Empty means the configured csv_separator.
	Delimiter string

	// HeaderRow is the 0-based row index holding the column labels.
	// Data is read from HeaderRow+1.
	HeaderRow int

	// ItemColumn, DescriptionColumn and PriceColumn are header labels.
	ItemColumn        string
	DescriptionColumn string
	PriceColumn       string
}

// =============================================================================
// RAW TABULAR DATA
// =============================================================================

// Table is a source file as read from disk: the header labels and the data
// rows that follow the header row.
type Table struct {
	// Source is the file the table was read from.
	Source string

	// Headers are the cleaned column labels of the header row.
	Headers []string

	// Rows are the data rows, in sheet order.
	Rows []RawRow
}

// RawRow is one data row. Values are positional and line up with Headers;
// a row shorter than the header has empty trailing cells.
type RawRow struct {
	// Number is the 1-based row number in the source, for diagnostics.
	Number int

	Headers []string
	Values  []string
}

// Cell returns the value under the given header label. The boolean is false
// only when no such column exists; a column that exists but is past the end
// of this row yields ("", true).
func (r RawRow) Cell(label string) (string, bool) {
	for i, h := range r.Headers {
		if h != label {
			continue
		}
		if i < len(r.Values) {
			return r.Values[i], true
		}
		return "", true
	}
	return "", false
}

// =============================================================================
// CANONICAL RECORDS
// =============================================================================

// DisplayItem is the item identifier in the form shown to the operator.
// Numeric identifiers that are whole numbers are carried in their integer
// form ("42" for a 42.0 cell) with Numeric set; everything else keeps its
// trimmed original text.
type DisplayItem struct {
	Text    string
	Numeric bool
}

// String returns the display text.
func (d DisplayItem) String() string {
	return d.Text
}

// PriceRecord is one normalized source row.
type PriceRecord struct {
	// ItemKey is the matching key used across files.
	ItemKey string

	// Item is the identifier as it should be displayed.
	Item DisplayItem

	// Description is copied verbatim from the source cell.
	Description string

	// Price is never missing: blank or unparsable cells become zero.
	Price decimal.Decimal

	// SourceFile is the FileID of the mapping the row came from.
	SourceFile string
}

// ResultRow is the display/export form of a reconciled record.
type ResultRow struct {
	ItemKey     string
	Item        DisplayItem
	Description string
	Price       decimal.Decimal

	// Quantity is an operator annotation. Nil means blank, which is
	// different from an explicit zero when a file is round-tripped.
	Quantity *decimal.Decimal

	SourceFile string
}

// HasQuantity reports whether the row carries a non-zero quantity.
func (r ResultRow) HasQuantity() bool {
	return r.Quantity != nil && !r.Quantity.IsZero()
}

// SourceTotal is Σ price × quantity for one source file.
type SourceTotal struct {
	SourceFile string
	Total      decimal.Decimal
	Rows       int
}
