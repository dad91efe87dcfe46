// =============================================================================
// Price Compare - XLSX Price List Parser
// =============================================================================
//
// This module reads supplier price lists stored as Excel workbooks. A price
// list usually carries a few title rows above the real header, so the caller
// supplies the header row index (chosen by the user, for example from the
// output of Preview).
//
// WORKBOOK LAYOUT (example, header_row = 2):
//
//   | Row | Column A       | Column B        | Column C  |
//   |-----|----------------|-----------------|-----------|
//   | 1   | ACME Price List|                 |           |
//   | 2   | Valid 2024     |                 |           |
//   | 3   | Code           | Description     | Net Price |  <- header
//   | 4   | 1001           | Widget          | 10.5      |  <- data
//   | 5   | A-77           | Gadget, large   |           |
//
// Cells are read as raw values so that numeric cells arrive as plain
// numerals ("1001", "10.5") instead of number-format renderings ("1,001",
// "$10.50").
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/price-compare/internal/csvparser"
	"github.com/ginjaninja78/price-compare/internal/types"
)

// PreviewRows is the number of rows Preview returns by default.
const PreviewRows = 20

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one worksheet of a workbook into a Table.
//
// PARAMETERS:
//   - path: The path to the workbook.
//   - sheet: The worksheet name. Empty selects the first sheet.
//   - headerRow: The 0-based index of the header row.
//
// RETURNS:
//   - The Table holding the header labels and every later non-blank row.
//   - A *types.UnreadableSourceError if the workbook cannot be opened, the
//     sheet does not exist, or the header row is past the end of the sheet.
func Parse(path, sheet string, headerRow int) (*types.Table, error) {
	rows, err := readRows(path, sheet)
	if err != nil {
		return nil, &types.UnreadableSourceError{File: path, Err: err}
	}

	table, err := csvparser.BuildTable(path, rows, headerRow)
	if err != nil {
		return nil, &types.UnreadableSourceError{File: path, Err: err}
	}

	return table, nil
}

// Preview returns up to n raw rows from the top of a worksheet so a caller
// can pick the header row. n <= 0 means PreviewRows.
func Preview(path, sheet string, n int) ([][]string, error) {
	if n <= 0 {
		n = PreviewRows
	}

	rows, err := readRows(path, sheet)
	if err != nil {
		return nil, &types.UnreadableSourceError{File: path, Err: err}
	}

	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// SheetNames lists the worksheets of a workbook in workbook order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &types.UnreadableSourceError{File: path, Err: err}
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// readRows opens the workbook and returns the raw rows of one sheet.
func readRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	return rows, nil
}

// resolveSheet picks the requested sheet, matching names case-insensitively,
// or the first sheet when none is requested.
func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if sheet == "" {
		return sheets[0], nil
	}

	for _, name := range sheets {
		if strings.EqualFold(name, sheet) {
			return name, nil
		}
	}

	return "", fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(sheets, ", "))
}
