package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/price-compare/internal/types"
)

func rec(key, desc, price, source string) types.PriceRecord {
	return types.PriceRecord{
		ItemKey:     key,
		Item:        types.DisplayItem{Text: key},
		Description: desc,
		Price:       decimal.RequireFromString(price),
		SourceFile:  source,
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestReconcile_LowestPriceWins(t *testing.T) {
	rows := Reconcile([]types.PriceRecord{
		rec("1001", "Widget", "10.50", "A.xlsx"),
		rec("1001", "Widget", "9.99", "B.xlsx"),
	})

	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if !rows[0].Price.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("Price = %s, want 9.99", rows[0].Price)
	}
	if rows[0].SourceFile != "B.xlsx" {
		t.Errorf("SourceFile = %q, want B.xlsx", rows[0].SourceFile)
	}
}

func TestReconcile_OneRowPerKeyWithMinimum(t *testing.T) {
	input := []types.PriceRecord{
		rec("a", "Alpha", "5", "1"),
		rec("b", "Beta", "7", "1"),
		rec("a", "Alpha", "3", "2"),
		rec("c", "Gamma", "1", "2"),
		rec("b", "Beta", "8", "3"),
		rec("a", "Alpha", "4", "3"),
	}

	rows := Reconcile(input)

	want := map[string]string{"a": "3", "b": "7", "c": "1"}
	if len(rows) != len(want) {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(want))
	}
	for _, row := range rows {
		if !row.Price.Equal(decimal.RequireFromString(want[row.ItemKey])) {
			t.Errorf("key %s price = %s, want %s", row.ItemKey, row.Price, want[row.ItemKey])
		}
	}
}

func TestReconcile_TieKeepsFirstSeen(t *testing.T) {
	rows := Reconcile([]types.PriceRecord{
		rec("x", "First description", "5.00", "first.xlsx"),
		rec("x", "Second description", "5", "second.xlsx"),
		rec("x", "Third description", "6", "third.xlsx"),
	})

	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	got := rows[0]
	if got.SourceFile != "first.xlsx" || got.Description != "First description" {
		t.Errorf("retained %+v, want the first-seen record", got)
	}
}

func TestReconcile_ZeroPriceBeatsPositive(t *testing.T) {
	rows := Reconcile([]types.PriceRecord{
		rec("x", "Thing", "4", "a"),
		rec("x", "Thing", "0", "b"),
	})
	if rows[0].SourceFile != "b" {
		t.Errorf("SourceFile = %q, want b (zero is the minimum)", rows[0].SourceFile)
	}
}

func TestReconcile_SortsByDescription(t *testing.T) {
	rows := Reconcile([]types.PriceRecord{
		rec("1", "banana", "1", "s"),
		rec("2", "Apple", "1", "s"),
		rec("3", "", "1", "s"),
		rec("4", "cherry", "1", "s"),
		rec("5", "apple", "1", "s"),
		rec("6", "   ", "1", "s"),
	})

	wantKeys := []string{"3", "6", "2", "5", "1", "4"}
	if len(rows) != len(wantKeys) {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(wantKeys))
	}
	for i, want := range wantKeys {
		if rows[i].ItemKey != want {
			t.Errorf("rows[%d].ItemKey = %q, want %q (description %q)", i, rows[i].ItemKey, want, rows[i].Description)
		}
	}
}

func TestReconcile_Empty(t *testing.T) {
	if rows := Reconcile(nil); len(rows) != 0 {
		t.Errorf("Reconcile(nil) = %v, want empty", rows)
	}
}

func TestTable_Add(t *testing.T) {
	table := NewTable()
	if !table.Add(rec("k", "d", "5", "a")) {
		t.Error("first Add should retain the record")
	}
	if table.Add(rec("k", "d", "5", "b")) {
		t.Error("equal price should not replace")
	}
	if !table.Add(rec("k", "d", "4.99", "c")) {
		t.Error("strictly lower price should replace")
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestSubtotals(t *testing.T) {
	rows := []types.ResultRow{
		{ItemKey: "1", Price: decimal.RequireFromString("2.50"), Quantity: dec("4"), SourceFile: "b.xlsx"},
		{ItemKey: "2", Price: decimal.RequireFromString("1.25"), Quantity: dec("2"), SourceFile: "b.xlsx"},
		{ItemKey: "3", Price: decimal.RequireFromString("100"), SourceFile: "b.xlsx"},
		{ItemKey: "4", Price: decimal.RequireFromString("3"), Quantity: dec("0"), SourceFile: "a.xlsx"},
		{ItemKey: "5", Price: decimal.RequireFromString("7"), SourceFile: "c.xlsx"},
	}

	totals := Subtotals(rows)

	if len(totals) != 2 {
		t.Fatalf("len(totals) = %d, want 2 (c.xlsx has no quantities)", len(totals))
	}
	if totals[0].SourceFile != "a.xlsx" || !totals[0].Total.IsZero() || totals[0].Rows != 1 {
		t.Errorf("totals[0] = %+v", totals[0])
	}
	if totals[1].SourceFile != "b.xlsx" || !totals[1].Total.Equal(decimal.RequireFromString("12.5")) || totals[1].Rows != 2 {
		t.Errorf("totals[1] = %+v, want b.xlsx 12.5 over 2 rows", totals[1])
	}
}
