// =============================================================================
// Price Compare - Results File Commands
// =============================================================================
//
// Commands that work on a results file written by 'compare' and edited by
// the operator (typically to fill in the Quantity column):
//
//   pricecompare split  --in best.csv --out orders   one file per supplier
//   pricecompare totals --in best.csv                Σ price × quantity per supplier
//
// The file is read with the current settings, so it must have been written
// with the same separators.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/price-compare/internal/reconcile"
	"github.com/ginjaninja78/price-compare/internal/resultio"
	"github.com/ginjaninja78/price-compare/pkg/utils"
)

var (
	resultsIn string
	splitOut  string
	splitMode string
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a results file into one order file per supplier",
	Long: `The split command reads a results file and writes one file per source
named <source>_best_prices.csv. By default only rows with a non-zero quantity
are kept and suppliers without such rows get no file; --mode all keeps
every row.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := resultio.ParseMode(splitMode)
		if err != nil {
			return err
		}

		rows, err := readResultsFile(resultsIn)
		if err != nil {
			return err
		}
		logger.Debugf("Read %d row(s) from %s", len(rows), resultsIn)

		if err := utils.EnsureDir(splitOut); err != nil {
			return err
		}

		written, err := resultio.ExportBatch(splitOut, rows, settings, resultio.ExportOptions{
			Mode:      mode,
			PerSource: true,
		})
		for _, path := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", path)
		}
		if err != nil {
			return err
		}

		if len(written) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No rows with a quantity; nothing written.")
		}
		return nil
	},
}

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show the order total per supplier of a results file",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := readResultsFile(resultsIn)
		if err != nil {
			return err
		}

		printTotals(cmd.OutOrStdout(), reconcile.Subtotals(rows), settings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(totalsCmd)

	for _, c := range []*cobra.Command{splitCmd, totalsCmd} {
		c.Flags().StringVarP(&resultsIn, "in", "i", "", "Results file to read")
		c.MarkFlagRequired("in")
	}

	splitCmd.Flags().StringVarP(&splitOut, "out", "o", "orders", "Output directory")
	splitCmd.Flags().StringVar(&splitMode, "mode", "quantity", "Rows to keep: quantity or all")
}
