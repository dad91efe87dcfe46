// =============================================================================
// Price Compare - History Commands
// =============================================================================
//
// COMMAND USAGE:
//   pricecompare history --archive runs.db                 list runs, newest first
//   pricecompare history show <id> --archive runs.db       print a run's rows
//   pricecompare history export <id> --archive runs.db     export a run again
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/price-compare/internal/config"
	"github.com/ginjaninja78/price-compare/internal/resultio"
	"github.com/ginjaninja78/price-compare/internal/store"
	"github.com/ginjaninja78/price-compare/pkg/utils"
)

var (
	historyArchive   string
	historyOut       string
	historyPerSource bool
	historyMode      string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived comparison runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer archive.Close()

		runs, err := archive.ListRuns(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No archived runs.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCreated\tSources\tSkipped\tItems")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Sources, r.Skipped, r.RowCount)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the rows of an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer archive.Close()

		run, err := archive.LoadRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printRows(cmd.OutOrStdout(), run.Rows, settings)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export an archived run with the current settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := resultio.ParseMode(historyMode)
		if err != nil {
			return err
		}

		archive, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer archive.Close()

		run, err := archive.LoadRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if err := utils.EnsureDir(historyOut); err != nil {
			return err
		}

		name := utils.GenerateOutputFileName("best_prices_{run}", map[string]string{"run": run.ID})
		written, err := resultio.ExportBatch(historyOut, run.Rows, settings, resultio.ExportOptions{
			CombinedName: name,
			Mode:         mode,
			PerSource:    historyPerSource,
		})
		for _, path := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", path)
		}
		return err
	},
}

// openArchive opens --archive, or PRICECOMPARE_ARCHIVE when the flag is not
// given.
func openArchive(cmd *cobra.Command) (*store.Store, error) {
	path := historyArchive
	if env := os.Getenv(config.EnvArchive); env != "" && !cmd.Flags().Changed("archive") {
		path = env
	}
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("archive %s does not exist", path)
	}
	return store.Open(path)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	historyCmd.PersistentFlags().StringVar(&historyArchive, "archive", "history.db", "SQLite archive to read (env PRICECOMPARE_ARCHIVE)")

	historyExportCmd.Flags().StringVarP(&historyOut, "out", "o", "output", "Output directory")
	historyExportCmd.Flags().BoolVar(&historyPerSource, "per-source", false, "Also write one file per source")
	historyExportCmd.Flags().StringVar(&historyMode, "mode", "quantity", "Per-source rows: quantity or all")
}
