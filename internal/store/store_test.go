package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/price-compare/internal/types"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRows() []types.ResultRow {
	q := decimal.RequireFromString("2.5")
	zero := decimal.Zero
	return []types.ResultRow{
		{ItemKey: "1001", Item: types.DisplayItem{Text: "1001", Numeric: true}, Description: "Widget", Price: decimal.RequireFromString("9.99"), Quantity: &q, SourceFile: "b.csv"},
		{ItemKey: "ab-12", Item: types.DisplayItem{Text: "AB-12"}, Description: "Bolt", Price: decimal.RequireFromString("0.1234"), SourceFile: "a.xlsx"},
		{ItemKey: "7", Item: types.DisplayItem{Text: "7", Numeric: true}, Description: "", Price: decimal.Zero, Quantity: &zero, SourceFile: "a.xlsx"},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	want := sampleRows()
	id, err := s.SaveRun(ctx, Run{Sources: 3, Skipped: 1, Rows: want})
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if id == "" {
		t.Fatal("SaveRun() returned an empty id")
	}

	run, err := s.LoadRun(ctx, id)
	if err != nil {
		t.Fatalf("LoadRun() error = %v", err)
	}
	if run.Sources != 3 || run.Skipped != 1 {
		t.Errorf("run = %+v", run)
	}
	if len(run.Rows) != len(want) {
		t.Fatalf("len(Rows) = %d, want %d", len(run.Rows), len(want))
	}

	for i := range want {
		got := run.Rows[i]
		if got.ItemKey != want[i].ItemKey || got.Item != want[i].Item || got.Description != want[i].Description || got.SourceFile != want[i].SourceFile {
			t.Errorf("row %d = %+v, want %+v", i, got, want[i])
		}
		if !got.Price.Equal(want[i].Price) {
			t.Errorf("row %d price = %s, want %s", i, got.Price, want[i].Price)
		}
		if (got.Quantity == nil) != (want[i].Quantity == nil) {
			t.Errorf("row %d quantity presence = %v, want %v", i, got.Quantity != nil, want[i].Quantity != nil)
		} else if got.Quantity != nil && !got.Quantity.Equal(*want[i].Quantity) {
			t.Errorf("row %d quantity = %s, want %s", i, got.Quantity, want[i].Quantity)
		}
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "newest", "middle"} {
		offset := map[string]time.Duration{"old": 0, "middle": time.Hour, "newest": 2 * time.Hour}[id]
		if _, err := s.SaveRun(ctx, Run{ID: id, CreatedAt: base.Add(offset), Sources: i + 1, Rows: sampleRows()[:1]}); err != nil {
			t.Fatalf("SaveRun(%s) error = %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len(runs) = %d, want 3", len(runs))
	}
	for i, want := range []string{"newest", "middle", "old"} {
		if runs[i].ID != want {
			t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, want)
		}
	}
	if runs[0].RowCount != 1 || !runs[0].CreatedAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("runs[0] = %+v", runs[0])
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	s := openTemp(t)

	if _, err := s.LoadRun(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestSaveRun_DuplicateIDRollsBack(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if _, err := s.SaveRun(ctx, Run{ID: "dup", Rows: sampleRows()}); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if _, err := s.SaveRun(ctx, Run{ID: "dup", Rows: sampleRows()[:1]}); err == nil {
		t.Fatal("second SaveRun() with the same id: error = nil")
	}

	run, err := s.LoadRun(ctx, "dup")
	if err != nil {
		t.Fatalf("LoadRun() error = %v", err)
	}
	if len(run.Rows) != 3 {
		t.Errorf("len(Rows) = %d, want 3 (first save intact)", len(run.Rows))
	}
}
