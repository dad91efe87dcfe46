// =============================================================================
// Price Compare - Delimited File Parser
// =============================================================================
//
// This module reads delimited price lists (.csv / .txt) into a Table and
// owns the reader configuration shared with the results importer.
//
// FEATURES:
//   - Any single-character delimiter (comma, semicolon, tab, pipe, ...)
//   - A user-chosen header row; rows above it are ignored
//   - Ragged rows (fewer or more cells than the header)
//   - UTF-8 byte order mark stripped from the first cell
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/price-compare/internal/types"
)

const bom = "\ufeff"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a delimited price list.
//
// PARAMETERS:
//   - filePath: The path to the file.
//   - delimiter: The field separator (one character). Empty means ",".
//   - headerRow: The 0-based index of the header row.
//
// RETURNS:
//   - The Table holding the header labels and every later non-blank row.
//   - A *types.UnreadableSourceError if the file cannot be opened or parsed,
//     or has no row at headerRow.
func Parse(filePath, delimiter string, headerRow int) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, &types.UnreadableSourceError{File: filePath, Err: err}
	}
	defer file.Close()

	allRows, err := ReadAll(bufio.NewReader(file), delimiter)
	if err != nil {
		return nil, &types.UnreadableSourceError{File: filePath, Err: err}
	}

	table, err := BuildTable(filePath, allRows, headerRow)
	if err != nil {
		return nil, &types.UnreadableSourceError{File: filePath, Err: err}
	}

	return table, nil
}

// ReadAll reads every record from r using the given delimiter.
func ReadAll(r io.Reader, delimiter string) ([][]string, error) {
	reader, err := NewReader(r, delimiter)
	if err != nil {
		return nil, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], bom)
	}

	return rows, nil
}

// NewReader returns a csv.Reader configured for price lists and result files.
func NewReader(r io.Reader, delimiter string) (*csv.Reader, error) {
	comma, err := delimiterRune(delimiter)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = comma

	// Price lists are rarely rectangular.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true

	return reader, nil
}

// delimiterRune converts the configured delimiter to a rune.
func delimiterRune(delimiter string) (rune, error) {
	switch delimiter {
	case "":
		return ',', nil
	case "\\t", "tab", "TAB":
		return '\t', nil
	}

	if utf8.RuneCountInString(delimiter) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	r, _ := utf8.DecodeRuneInString(delimiter)
	switch r {
	case '"', '\r', '\n', utf8.RuneError:
		return 0, fmt.Errorf("invalid delimiter %q", delimiter)
	}

	return r, nil
}

// =============================================================================
// TABLE CONSTRUCTION
// =============================================================================

// BuildTable turns raw positional rows into a Table whose header is the row
// at headerRow. Rows above the header are dropped; blank rows after it are
// skipped. Used by both the delimited and the workbook readers.
func BuildTable(source string, allRows [][]string, headerRow int) (*types.Table, error) {
	if headerRow < 0 {
		return nil, fmt.Errorf("header row must not be negative, got %d", headerRow)
	}
	if headerRow >= len(allRows) {
		return nil, fmt.Errorf("header row %d is beyond the last row (%d rows)", headerRow, len(allRows))
	}

	headers := CleanHeaders(allRows[headerRow])

	table := &types.Table{
		Source:  source,
		Headers: headers,
		Rows:    make([]types.RawRow, 0, len(allRows)-headerRow-1),
	}

	for i := headerRow + 1; i < len(allRows); i++ {
		row := allRows[i]
		if IsRowEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, types.RawRow{
			Number:  i + 1,
			Headers: headers,
			Values:  row,
		})
	}

	return table, nil
}

// CleanHeaders trims header labels and names empty ones "Column_N" (1-based).
func CleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// IsRowEmpty checks if a row contains only blank values.
func IsRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
