// =============================================================================
// Price Compare - Compare Command
// =============================================================================
//
// This file defines the 'compare' command, which runs a full comparison:
// read every price list, keep the lowest price per item, show the result and
// export it.
//
// SOURCES:
//   --sources sources.yaml   one mapping per file (columns may differ per file)
//   --dir lists/             every .xlsx/.csv/.txt in the directory, all using
//                            the --item/--description/--price columns
//
// OUTPUT (in --out):
//   best_prices_<timestamp>.csv       the combined file (every row)
//   <source>_best_prices.csv          one per source (with --per-source)
//   best_prices_<timestamp>.xlsx      with --xlsx
//   compare_summary_<timestamp>.txt   with --summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/price-compare/internal/comparer"
	"github.com/ginjaninja78/price-compare/internal/config"
	"github.com/ginjaninja78/price-compare/internal/logging"
	"github.com/ginjaninja78/price-compare/internal/reconcile"
	"github.com/ginjaninja78/price-compare/internal/resultio"
	"github.com/ginjaninja78/price-compare/internal/store"
	"github.com/ginjaninja78/price-compare/internal/types"
	"github.com/ginjaninja78/price-compare/internal/validation"
	"github.com/ginjaninja78/price-compare/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var compareOpts struct {
	sourcesFile string
	dir         string

	itemColumn        string
	descriptionColumn string
	priceColumn       string
	headerRow         int
	sheet             string

	outDir      string
	nameFormat  string
	perSource   bool
	mode        string
	xlsx        bool
	archive     string
	summary     bool
	concurrency int
	noExport    bool
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare price lists and export the lowest price per item",
	Long: `The compare command reads every configured price list, matches items by
their item code and keeps the lowest price for each item. On equal prices the
source listed first wins.

Sources are read concurrently. A source that cannot be read, or that lacks
one of its mapped columns, is reported and skipped; the other sources are
still compared.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompare(cmd)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	f := compareCmd.Flags()
	f.StringVar(&compareOpts.sourcesFile, "sources", "", "Path to a YAML sources file")
	f.StringVar(&compareOpts.dir, "dir", "", "Compare every price list in this directory")
	f.StringVar(&compareOpts.itemColumn, "item", "", "Item column label (with --dir)")
	f.StringVar(&compareOpts.descriptionColumn, "description", "", "Description column label (with --dir)")
	f.StringVar(&compareOpts.priceColumn, "price", "", "Price column label (with --dir)")
	f.IntVar(&compareOpts.headerRow, "header-row", 0, "0-based header row (with --dir)")
	f.StringVar(&compareOpts.sheet, "sheet", "", "Worksheet name, default the first sheet (with --dir)")

	f.StringVarP(&compareOpts.outDir, "out", "o", "output", "Output directory")
	f.StringVar(&compareOpts.nameFormat, "name", utils.DefaultOutputFormat, "Combined file name; supports {timestamp}, {date}, {uuid}")
	f.BoolVar(&compareOpts.perSource, "per-source", false, "Also write one file per source")
	f.StringVar(&compareOpts.mode, "mode", "quantity", "Per-source rows: quantity (rows with a quantity) or all")
	f.BoolVar(&compareOpts.xlsx, "xlsx", false, "Also write the combined result as a workbook")
	f.StringVar(&compareOpts.archive, "archive", "", "Save the run to this SQLite archive (env PRICECOMPARE_ARCHIVE)")
	f.BoolVar(&compareOpts.summary, "summary", false, "Write a run summary file")
	f.IntVar(&compareOpts.concurrency, "concurrency", 0, "Sources read at once (default from the sources file, else 4)")
	f.BoolVar(&compareOpts.noExport, "no-export", false, "Show the result without writing files")

	compareCmd.MarkFlagsMutuallyExclusive("sources", "dir")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runCompare(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	mode, err := resultio.ParseMode(compareOpts.mode)
	if err != nil {
		return err
	}

	mappings, concurrency, err := buildMappings()
	if err != nil {
		return err
	}
	if compareOpts.concurrency > 0 {
		concurrency = compareOpts.concurrency
	}

	cmp := comparer.New(
		comparer.WithLogger(logger),
		comparer.WithMaxConcurrency(concurrency),
		comparer.WithDefaultDelimiter(settings.CSVSeparator),
	)

	outcome, err := cmp.Compare(cmd.Context(), mappings)
	if err != nil {
		return err
	}

	for _, src := range outcome.Sources {
		if src.Skipped {
			logging.LogError(logger, "compare", "load", logrus.Fields{"source": src.File}, src.Err)
		}
	}

	// ==========================================================================
	// DISPLAY
	// ==========================================================================

	printRows(out, outcome.Rows, settings)

	if reasons := outcome.SkipReasons(); len(reasons) > 0 {
		fmt.Fprintf(out, "\nSkipped %d file(s):\n", len(reasons))
		for _, r := range reasons {
			fmt.Fprintf(out, "  %s\n", r)
		}
	}

	if totals := reconcile.Subtotals(outcome.Rows); len(totals) > 0 {
		fmt.Fprintln(out)
		printTotals(out, totals, settings)
	}

	fmt.Fprintf(out, "\n%d item(s) from %d of %d source(s) in %s\n",
		outcome.Stats.Rows, outcome.Stats.Loaded, outcome.Stats.Sources, outcome.Stats.Duration.Round(time.Millisecond))

	if outcome.Stats.Loaded == 0 && outcome.Stats.Sources > 0 {
		return fmt.Errorf("no source could be read")
	}

	// ==========================================================================
	// EXPORT
	// ==========================================================================

	var written []string

	if !compareOpts.noExport && len(outcome.Rows) > 0 {
		if err := utils.EnsureDir(compareOpts.outDir); err != nil {
			return err
		}

		combined := utils.GenerateOutputFileName(compareOpts.nameFormat, nil)

		written, err = resultio.ExportBatch(compareOpts.outDir, outcome.Rows, settings, resultio.ExportOptions{
			CombinedName: combined,
			Mode:         mode,
			PerSource:    compareOpts.perSource,
		})
		for _, path := range written {
			fmt.Fprintf(out, "  wrote %s\n", path)
		}
		if err != nil {
			return err
		}

		if compareOpts.xlsx {
			path := filepath.Join(compareOpts.outDir, strings.TrimSuffix(combined, filepath.Ext(combined))+".xlsx")
			if err := resultio.WriteXLSX(path, outcome.Rows); err != nil {
				return err
			}
			written = append(written, path)
			fmt.Fprintf(out, "  wrote %s\n", path)
		}
	}

	// ==========================================================================
	// ARCHIVE
	// ==========================================================================

	archivePath := compareOpts.archive
	if archivePath == "" {
		archivePath = os.Getenv(config.EnvArchive)
	}
	if archivePath != "" {
		id, err := archiveRun(cmd.Context(), archivePath, outcome)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  archived run %s\n", id)
	}

	if compareOpts.summary {
		if err := utils.EnsureDir(compareOpts.outDir); err != nil {
			return err
		}
		path, err := utils.WriteSummaryLog(buildSummary(startTime, outcome, written), compareOpts.outDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  wrote %s\n", path)
	}

	return nil
}

// buildMappings turns the --sources or --dir flags into validated mappings.
func buildMappings() ([]types.SourceMapping, int, error) {
	var (
		entries     []config.SourceEntry
		concurrency = config.DefaultMaxConcurrency
	)

	switch {
	case compareOpts.sourcesFile != "":
		sf, err := config.LoadSources(compareOpts.sourcesFile)
		if err != nil {
			return nil, 0, err
		}
		entries = sf.Sources
		concurrency = sf.MaxConcurrency

	case compareOpts.dir != "":
		files, err := utils.DiscoverSources(compareOpts.dir)
		if err != nil {
			return nil, 0, err
		}
		if len(files) == 0 {
			return nil, 0, fmt.Errorf("no price lists found in %s", compareOpts.dir)
		}
		for _, file := range files {
			entries = append(entries, config.SourceEntry{
				File:              file,
				Sheet:             compareOpts.sheet,
				HeaderRow:         compareOpts.headerRow,
				ItemColumn:        compareOpts.itemColumn,
				DescriptionColumn: compareOpts.descriptionColumn,
				PriceColumn:       compareOpts.priceColumn,
			})
		}

	default:
		return nil, 0, fmt.Errorf("either --sources or --dir is required")
	}

	mappings, errs := validation.NewSourceMappings(entries)
	for _, err := range errs {
		logger.Warnf("%v", err)
	}
	if len(mappings) == 0 {
		return nil, 0, fmt.Errorf("no valid source mapping (%d invalid)", len(errs))
	}

	return mappings, concurrency, nil
}

func archiveRun(ctx context.Context, path string, outcome comparer.Outcome) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return "", err
		}
	}

	archive, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer archive.Close()

	return archive.SaveRun(ctx, store.Run{
		Sources: outcome.Stats.Sources,
		Skipped: outcome.Stats.Skipped,
		Rows:    outcome.Rows,
	})
}

func buildSummary(startTime time.Time, outcome comparer.Outcome, written []string) utils.RunSummary {
	summary := utils.RunSummary{
		StartTime:      startTime,
		EndTime:        time.Now(),
		TotalSources:   outcome.Stats.Sources,
		LoadedSources:  outcome.Stats.Loaded,
		SkippedSources: outcome.Stats.Skipped,
		TotalRecords:   outcome.Stats.Records,
		ResultRows:     outcome.Stats.Rows,
		Outputs:        written,
	}

	for _, src := range outcome.Sources {
		if src.Skipped {
			summary.Skipped = append(summary.Skipped, utils.SkippedSourceInfo{File: src.File, Reason: src.Err.Error()})
			continue
		}
		summary.Loaded = append(summary.Loaded, utils.LoadedSourceInfo{File: src.File, Records: src.Records, LoadTime: src.LoadTime})
	}

	return summary
}
