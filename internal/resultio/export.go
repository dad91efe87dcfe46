package resultio

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/price-compare/internal/config"
	"github.com/ginjaninja78/price-compare/internal/types"
	"github.com/ginjaninja78/price-compare/pkg/utils"
)

// =============================================================================
// BATCH EXPORT
// =============================================================================

// ExportOptions controls ExportBatch.
type ExportOptions struct {
	// CombinedName is the file name of the combined export. Empty skips the
	// combined file.
	CombinedName string

	// Mode filters the per-source files. The combined file always holds
	// every row.
	Mode Mode

	// PerSource enables the per-source files.
	PerSource bool
}

// ExportBatch writes the combined file and one file per source into dir.
//
// Files are written one at a time, each through a temporary file that is
// renamed into place. The first failure stops the batch: files already
// written stay, the failing file is not created.
//
// In ModeWithQuantity a source with no quantity rows gets no file.
//
// RETURNS:
//   - The paths written, combined file first, then per-source files by name.
//   - A *types.MalformedExportTargetError naming the file that failed.
func ExportBatch(dir string, rows []types.ResultRow, s config.Settings, opts ExportOptions) ([]string, error) {
	var written []string

	if opts.CombinedName != "" {
		path := filepath.Join(dir, opts.CombinedName)
		data, err := Format(rows, s)
		if err != nil {
			return written, &types.MalformedExportTargetError{Path: path, Err: err}
		}
		if err := writeTarget(path, data); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if !opts.PerSource {
		return written, nil
	}

	for _, group := range GroupBySource(rows) {
		kept := FilterRows(group.Rows, opts.Mode)
		if len(kept) == 0 && opts.Mode == ModeWithQuantity {
			continue
		}

		path := filepath.Join(dir, group.FileName)
		data, err := FormatSource(kept, s, ModeAll)
		if err != nil {
			return written, &types.MalformedExportTargetError{Path: path, Err: err}
		}
		if err := writeTarget(path, data); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// SourceGroup is the rows that go to one per-source file. Sources whose
// names differ only by directory or extension share a group.
type SourceGroup struct {
	FileName string
	Sources  []string
	Rows     []types.ResultRow
}

// GroupBySource splits rows by per-source file name, keeping row order within
// each group. Groups are sorted by file name.
func GroupBySource(rows []types.ResultRow) []SourceGroup {
	index := make(map[string]int)
	var groups []SourceGroup

	for _, row := range rows {
		name := utils.PerSourceFileName(row.SourceFile)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, SourceGroup{FileName: name})
		}
		if !containsString(groups[i].Sources, row.SourceFile) {
			groups[i].Sources = append(groups[i].Sources, row.SourceFile)
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].FileName < groups[b].FileName })
	return groups
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func writeTarget(path string, data []byte) error {
	if err := utils.WriteFileAtomic(path, data); err != nil {
		return &types.MalformedExportTargetError{Path: path, Err: err}
	}
	return nil
}

// =============================================================================
// WORKBOOK EXPORT
// =============================================================================

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Best Prices"

// priceNumFmt shows four decimals with grouping; the separators follow the
// spreadsheet application's locale.
var priceNumFmt = "#,##0.0000"

// WriteXLSX writes rows to a workbook in the combined layout. Prices and
// quantities are stored as numbers, whole-number items as integers.
func WriteXLSX(path string, rows []types.ResultRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return &types.MalformedExportTargetError{Path: path, Err: err}
	}

	if err := f.SetSheetRow(SheetName, "A1", &CombinedHeader); err != nil {
		return &types.MalformedExportTargetError{Path: path, Err: err}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return &types.MalformedExportTargetError{Path: path, Err: err}
		}

		values := []interface{}{
			itemCellValue(row.Item),
			row.Description,
			row.Price.InexactFloat64(),
			nil,
			SourceCell(row.SourceFile),
		}
		if row.Quantity != nil {
			values[3] = row.Quantity.InexactFloat64()
		}

		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return &types.MalformedExportTargetError{Path: path, Err: err}
		}
	}

	if len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &priceNumFmt})
		if err != nil {
			return &types.MalformedExportTargetError{Path: path, Err: err}
		}
		last := fmt.Sprintf("C%d", len(rows)+1)
		if err := f.SetCellStyle(SheetName, "C2", last, style); err != nil {
			return &types.MalformedExportTargetError{Path: path, Err: err}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return &types.MalformedExportTargetError{Path: path, Err: err}
	}

	return writeTarget(path, buf.Bytes())
}

// itemCellValue stores numeric items as integers when they fit.
func itemCellValue(item types.DisplayItem) interface{} {
	if item.Numeric {
		if n, err := strconv.ParseInt(item.Text, 10, 64); err == nil {
			return n
		}
	}
	return item.Text
}
