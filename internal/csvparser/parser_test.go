package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ginjaninja78/price-compare/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse_HeaderRowAndRaggedRows(t *testing.T) {
	content := "\ufeffSupplier price list;;\n" +
		"Valid from 2024-01-01;;\n" +
		"Code; Name ;Price;\n" +
		"1001;Widget;10.50\n" +
		";;\n" +
		"abc-7;Gadget\n"
	path := writeFile(t, "list.csv", content)

	table, err := Parse(path, ";", 2)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantHeaders := []string{"Code", "Name", "Price", "Column_4"}
	if !reflect.DeepEqual(table.Headers, wantHeaders) {
		t.Errorf("Headers = %v, want %v", table.Headers, wantHeaders)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2 (blank row skipped)", len(table.Rows))
	}

	first := table.Rows[0]
	if first.Number != 4 {
		t.Errorf("Rows[0].Number = %d, want 4", first.Number)
	}
	if v, _ := first.Cell("Price"); v != "10.50" {
		t.Errorf("Rows[0] Price = %q, want %q", v, "10.50")
	}

	second := table.Rows[1]
	v, ok := second.Cell("Price")
	if !ok || v != "" {
		t.Errorf("short row Price = (%q, %v), want (\"\", true)", v, ok)
	}
	if _, ok := second.Cell("Cost"); ok {
		t.Error("Cell(\"Cost\") found a column that does not exist")
	}
}

func TestParse_Unreadable(t *testing.T) {
	tests := []struct {
		name      string
		path      func(t *testing.T) string
		headerRow int
	}{
		{
			name:      "missing file",
			path:      func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
			headerRow: 0,
		},
		{
			name:      "header beyond end",
			path:      func(t *testing.T) string { return writeFile(t, "short.csv", "a,b\n1,2\n") },
			headerRow: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.path(t), ",", tt.headerRow)
			var ue *types.UnreadableSourceError
			if !errors.As(err, &ue) {
				t.Fatalf("Parse() error = %v, want *UnreadableSourceError", err)
			}
		})
	}
}

func TestNewReader_Delimiters(t *testing.T) {
	tests := []struct {
		delimiter string
		input     string
		wantErr   bool
		want      []string
	}{
		{"", "a,b", false, []string{"a", "b"}},
		{"tab", "a\tb", false, []string{"a", "b"}},
		{"|", "a|b", false, []string{"a", "b"}},
		{";;", "a;b", true, nil},
		{"\"", "a\"b", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.delimiter, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(tt.input), tt.delimiter)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewReader() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			rec, err := r.Read()
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(rec, tt.want) {
				t.Errorf("Read() = %v, want %v", rec, tt.want)
			}
		})
	}
}
