// =============================================================================
// Price Compare - File Manager Utility
// =============================================================================
//
// This module provides the file handling shared by the commands:
//   - Source discovery (every price list in a directory)
//   - Output directory management
//   - Output file naming (combined and per-source files)
//   - Atomic file writes (temp file + rename)
//   - Run summary logs
//
// ATOMIC WRITES:
//   Every export is written to a temporary file in the destination directory
//   and renamed into place, so a reader never sees a half-written file and a
//   failed write leaves any previous file untouched.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkbookExtensions are read as Excel workbooks, templates included.
var WorkbookExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// DelimitedExtensions are read as delimited text.
var DelimitedExtensions = []string{".csv", ".txt"}

// SourceExtensions lists the file extensions treated as price lists.
var SourceExtensions = append(append([]string{}, WorkbookExtensions...), DelimitedExtensions...)

// PerSourceSuffix is appended to a source's base name to name its export.
const PerSourceSuffix = "_best_prices.csv"

// DefaultOutputFormat names the combined results file.
const DefaultOutputFormat = "best_prices_{timestamp}.csv"

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// SOURCE DISCOVERY
// =============================================================================

// DiscoverSources lists the price lists directly inside dir.
//
// PARAMETERS:
//   - dir: The directory to scan. Subdirectories are not entered.
//
// RETURNS:
//   - The matching file paths, sorted by name. Office lock files ("~$...")
//     are skipped.
//   - An error if the directory cannot be read.
func DiscoverSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if IsSourceFile(name) {
			files = append(files, filepath.Join(dir, name))
		}
	}

	sort.Strings(files)
	return files, nil
}

// IsSourceFile reports whether the name has a price-list extension.
func IsSourceFile(name string) bool {
	return hasExtension(name, SourceExtensions)
}

// IsWorkbook reports whether the name has a workbook extension.
func IsWorkbook(name string) bool {
	return hasExtension(name, WorkbookExtensions)
}

// IsDelimited reports whether the name has a delimited-text extension.
func IsDelimited(name string) bool {
	return hasExtension(name, DelimitedExtensions)
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a file name template.
//
// PARAMETERS:
//   - format: The template. Empty means DefaultOutputFormat.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//   - params: Extra placeholder values, keyed without braces.
//
// RETURNS:
//   - The file name. ".csv" is appended when the result has no extension.
//
// EXAMPLE:
//   format: "{supplier}_{date}"
//   params: {"supplier": "acme"}
//   output: "acme_20240115.csv"
func GenerateOutputFileName(format string, params map[string]string) string {
	if format == "" {
		format = DefaultOutputFormat
	}

	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if filepath.Ext(result) == "" {
		result += ".csv"
	}

	return result
}

// PerSourceFileName names the per-source export of a source file:
// "supplier_a.xlsx" becomes "supplier_a_best_prices.csv".
func PerSourceFileName(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "unknown"
	}
	return base + PerSourceSuffix
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place. On failure the temporary file is removed and any existing file
// at path is left as it was.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pricecompare-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary describes one comparison run.
type RunSummary struct {
	StartTime time.Time
	EndTime   time.Time

	TotalSources   int
	LoadedSources  int
	SkippedSources int
	TotalRecords   int
	ResultRows     int

	Loaded  []LoadedSourceInfo
	Skipped []SkippedSourceInfo

	// Outputs lists every file the run wrote.
	Outputs []string
}

// LoadedSourceInfo describes a source that contributed records.
type LoadedSourceInfo struct {
	File     string
	Records  int
	LoadTime time.Duration
}

// SkippedSourceInfo describes a source that was excluded from the run.
type SkippedSourceInfo struct {
	File   string
	Reason string
}

// WriteSummaryLog writes a run summary next to the exports.
//
// PARAMETERS:
//   - summary: The run summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("compare_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	rule := "================================================================================\n"
	thin := "--------------------------------------------------------------------------------\n"

	fmt.Fprintf(writer, "Price Compare - Run Summary\n%s\n", rule)
	fmt.Fprintf(writer, "Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String())
	fmt.Fprintf(writer, "Statistics:\n"+
		"  Sources:        %d\n"+
		"  Loaded:         %d\n"+
		"  Skipped:        %d\n"+
		"  Records:        %d\n"+
		"  Result Rows:    %d\n\n",
		summary.TotalSources,
		summary.LoadedSources,
		summary.SkippedSources,
		summary.TotalRecords,
		summary.ResultRows)

	if len(summary.Loaded) > 0 {
		fmt.Fprintf(writer, "Loaded Sources:\n%s", thin)
		for _, ls := range summary.Loaded {
			fmt.Fprintf(writer, "  File:      %s\n  Records:   %d\n  Load Time: %s\n\n", ls.File, ls.Records, ls.LoadTime)
		}
	}

	if len(summary.Skipped) > 0 {
		fmt.Fprintf(writer, "Skipped Sources:\n%s", thin)
		for _, ss := range summary.Skipped {
			fmt.Fprintf(writer, "  File:   %s\n  Reason: %s\n\n", ss.File, ss.Reason)
		}
	}

	if len(summary.Outputs) > 0 {
		fmt.Fprintf(writer, "Output Files:\n%s", thin)
		for _, out := range summary.Outputs {
			fmt.Fprintf(writer, "  %s\n", out)
		}
		writer.WriteString("\n")
	}

	writer.WriteString(rule + "End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
