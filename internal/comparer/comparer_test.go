package comparer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/price-compare/internal/types"
)

// ----------------------------------------------------------------------------
// Fixtures
// ----------------------------------------------------------------------------

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func writeXLSX(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	return path
}

func mapping(file, item, desc, price string) types.SourceMapping {
	return types.SourceMapping{
		FileID:            file,
		ItemColumn:        item,
		DescriptionColumn: desc,
		PriceColumn:       price,
	}
}

// ----------------------------------------------------------------------------
// Compare
// ----------------------------------------------------------------------------

func TestCompare_LowestPriceAcrossFormats(t *testing.T) {
	dir := t.TempDir()

	a := writeXLSX(t, dir, "A.xlsx", [][]interface{}{
		{"Code", "Name", "Price"},
		{1001, "Widget", 10.50},
	})
	b := writeCSV(t, dir, "B.csv", "Item;Description;Cost\n1001.0;Widget;9.99\n2002;Gadget;5\n")

	bMap := mapping(b, "Item", "Description", "Cost")
	bMap.Delimiter = ";"

	outcome, err := New().Compare(context.Background(), []types.SourceMapping{
		mapping(a, "Code", "Name", "Price"),
		bMap,
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if len(outcome.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(outcome.Rows))
	}

	// Sorted by description: Gadget, Widget.
	widget := outcome.Rows[1]
	if widget.ItemKey != "1001" || !widget.Price.Equal(decimal.RequireFromString("9.99")) || widget.SourceFile != b {
		t.Errorf("widget = %+v, want 1001 at 9.99 from B.csv", widget)
	}

	if outcome.Stats.Loaded != 2 || outcome.Stats.Skipped != 0 || outcome.Stats.Records != 3 {
		t.Errorf("Stats = %+v", outcome.Stats)
	}
}

func TestLoadTable_WorkbookTemplates(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"prices.xlsm", "prices.xltx", "prices.xltm"} {
		t.Run(name, func(t *testing.T) {
			path := writeXLSX(t, dir, name, [][]interface{}{
				{"Code", "Name", "Price"},
				{7, "Template row", 1.25},
			})

			records, err := New().LoadSource(mapping(path, "Code", "Name", "Price"))
			if err != nil {
				t.Fatalf("LoadSource() error = %v", err)
			}
			if len(records) != 1 || records[0].ItemKey != "7" {
				t.Errorf("records = %+v", records)
			}
		})
	}
}

func TestCompare_MissingColumnSkipsOnlyThatFile(t *testing.T) {
	dir := t.TempDir()

	good := writeCSV(t, dir, "good.csv", "Item,Description,Price\n1,Thing,3\n")
	bad := writeCSV(t, dir, "bad.csv", "Item,Description,Cost\n1,Thing,1\n")

	outcome, err := New().Compare(context.Background(), []types.SourceMapping{
		mapping(bad, "Item", "Description", "Price"),
		mapping(good, "Item", "Description", "Price"),
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if len(outcome.Rows) != 1 || outcome.Rows[0].SourceFile != good {
		t.Fatalf("Rows = %+v, want one row from good.csv", outcome.Rows)
	}

	skipped := outcome.Sources[0]
	if !skipped.Skipped {
		t.Fatal("bad.csv should be skipped")
	}
	var cnf *types.ColumnNotFoundError
	if !errors.As(skipped.Err, &cnf) || cnf.Column != "Price" {
		t.Errorf("Err = %v, want ColumnNotFoundError for Price", skipped.Err)
	}
	if len(outcome.SkipReasons()) != 1 {
		t.Errorf("SkipReasons() = %v", outcome.SkipReasons())
	}
}

func TestCompare_UnreadableSources(t *testing.T) {
	dir := t.TempDir()

	good := writeCSV(t, dir, "good.csv", "Item,Description,Price\n1,Thing,3\n")
	legacy := writeCSV(t, dir, "old.xls", "not really a workbook")
	missing := filepath.Join(dir, "missing.csv")

	outcome, err := New().Compare(context.Background(), []types.SourceMapping{
		mapping(legacy, "Item", "Description", "Price"),
		mapping(missing, "Item", "Description", "Price"),
		mapping(good, "Item", "Description", "Price"),
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	for _, i := range []int{0, 1} {
		var unreadable *types.UnreadableSourceError
		if !errors.As(outcome.Sources[i].Err, &unreadable) {
			t.Errorf("Sources[%d].Err = %v, want UnreadableSourceError", i, outcome.Sources[i].Err)
		}
	}
	if outcome.Stats.Skipped != 2 || len(outcome.Rows) != 1 {
		t.Errorf("Stats = %+v, rows = %d", outcome.Stats, len(outcome.Rows))
	}
}

func TestCompare_TieBreakFollowsMappingOrder(t *testing.T) {
	dir := t.TempDir()

	var mappings []types.SourceMapping
	for _, name := range []string{"first.csv", "second.csv", "third.csv", "fourth.csv"} {
		path := writeCSV(t, dir, name, "Item,Description,Price\nX,Same,5\n")
		mappings = append(mappings, mapping(path, "Item", "Description", "Price"))
	}

	for _, n := range []int{1, 2, 8} {
		outcome, err := New(WithMaxConcurrency(n)).Compare(context.Background(), mappings)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if got := filepath.Base(outcome.Rows[0].SourceFile); got != "first.csv" {
			t.Errorf("concurrency %d: winner = %s, want first.csv", n, got)
		}
	}
}

func TestCompare_Empty(t *testing.T) {
	outcome, err := New().Compare(context.Background(), nil)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(outcome.Rows) != 0 || outcome.Stats.Sources != 0 {
		t.Errorf("outcome = %+v, want empty", outcome)
	}
}

func TestCompare_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "a.csv", "Item,Description,Price\n1,a,1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Compare(ctx, []types.SourceMapping{mapping(path, "Item", "Description", "Price")}); !errors.Is(err, context.Canceled) {
		t.Errorf("Compare() error = %v, want context.Canceled", err)
	}
}

// ----------------------------------------------------------------------------
// LoadTable
// ----------------------------------------------------------------------------

func TestLoadTable_DefaultDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "list.txt", "Item|Description|Price\n1|a|2\n")

	table, err := New(WithDefaultDelimiter("|")).LoadTable(mapping(path, "Item", "Description", "Price"))
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if len(table.Headers) != 3 || len(table.Rows) != 1 {
		t.Errorf("table = %+v", table)
	}
}

func TestLoadSource_HeaderRow(t *testing.T) {
	dir := t.TempDir()
	path := writeXLSX(t, dir, "offset.xlsx", [][]interface{}{
		{"Supplier price list"},
		{},
		{"Ref", "Label", "Net"},
		{"AB-1", "Bolt", "0.25"},
		{"AB-2", "Nut", "n/a"},
	})

	m := mapping(path, "Ref", "Label", "Net")
	m.HeaderRow = 2

	records, err := New().LoadSource(m)
	if err != nil {
		t.Fatalf("LoadSource() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].ItemKey != "ab-1" || !records[1].Price.IsZero() {
		t.Errorf("records = %+v", records)
	}
}
