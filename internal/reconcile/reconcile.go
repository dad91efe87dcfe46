// Package reconcile folds normalized price records from every source into
// one best-price row per item.
//
// The fold is a single pass in input order. For each record the running
// table keeps the first record seen for its key and replaces it only when a
// later record is strictly cheaper, so among equal prices the earliest
// record wins.
//
// Output is sorted by description, case-insensitively, with empty
// descriptions first. Rows with equal descriptions stay in the order their
// keys were first seen.
package reconcile

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/price-compare/internal/types"
)

// Table is the running best-price table of one reconciliation. A Table is
// built fresh for every run and is not safe for concurrent use.
type Table struct {
	best  map[string]types.PriceRecord
	order []string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{best: make(map[string]types.PriceRecord)}
}

// Add folds one record into the table. It reports whether the record is now
// the retained candidate for its key.
func (t *Table) Add(rec types.PriceRecord) bool {
	current, ok := t.best[rec.ItemKey]
	if !ok {
		t.best[rec.ItemKey] = rec
		t.order = append(t.order, rec.ItemKey)
		return true
	}
	if rec.Price.LessThan(current.Price) {
		t.best[rec.ItemKey] = rec
		return true
	}
	return false
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	return len(t.order)
}

// Rows returns the retained records as result rows sorted by description.
func (t *Table) Rows() []types.ResultRow {
	rows := make([]types.ResultRow, 0, len(t.order))
	for _, key := range t.order {
		rec := t.best[key]
		rows = append(rows, types.ResultRow{
			ItemKey:     rec.ItemKey,
			Item:        rec.Item,
			Description: rec.Description,
			Price:       rec.Price,
			SourceFile:  rec.SourceFile,
		})
	}

	SortByDescription(rows)
	return rows
}

// Reconcile folds records, in order, into best-price result rows.
func Reconcile(records []types.PriceRecord) []types.ResultRow {
	table := NewTable()
	for _, rec := range records {
		table.Add(rec)
	}
	return table.Rows()
}

// SortByDescription sorts rows in place: case-insensitive ascending, blank
// descriptions first, ties keep their current order.
func SortByDescription(rows []types.ResultRow) {
	keys := make([]string, len(rows))
	for i := range rows {
		keys[i] = sortKey(rows[i].Description)
	}
	sort.Stable(byKey{rows: rows, keys: keys})
}

// sortKey is "" for blank descriptions, which sorts before every non-blank
// key.
func sortKey(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}
	return strings.ToLower(description)
}

type byKey struct {
	rows []types.ResultRow
	keys []string
}

func (b byKey) Len() int           { return len(b.rows) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.rows[i], b.rows[j] = b.rows[j], b.rows[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// Subtotals sums price × quantity per source file over rows that carry a
// quantity. Sources are returned sorted by name.
func Subtotals(rows []types.ResultRow) []types.SourceTotal {
	totals := make(map[string]*types.SourceTotal)
	for _, row := range rows {
		if row.Quantity == nil {
			continue
		}
		st, ok := totals[row.SourceFile]
		if !ok {
			st = &types.SourceTotal{SourceFile: row.SourceFile, Total: decimal.Zero}
			totals[row.SourceFile] = st
		}
		st.Total = st.Total.Add(row.Price.Mul(*row.Quantity))
		st.Rows++
	}

	out := make([]types.SourceTotal, 0, len(totals))
	for _, st := range totals {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceFile < out[j].SourceFile })
	return out
}
