package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/price-compare/internal/csvparser"
	"github.com/ginjaninja78/price-compare/internal/xlsxparser"
	"github.com/ginjaninja78/price-compare/pkg/utils"
)

var (
	previewSheet     string
	previewRows      int
	previewDelimiter string
)

// previewCmd shows the top of a price list so the operator can pick the
// header row and column labels for a sources file.
var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the first rows of a price list with their row numbers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		out := cmd.OutOrStdout()

		var rows [][]string
		switch {
		case utils.IsWorkbook(path):
			sheets, err := xlsxparser.SheetNames(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Sheets: %s\n\n", strings.Join(sheets, ", "))

			rows, err = xlsxparser.Preview(path, previewSheet, previewRows)
			if err != nil {
				return err
			}

		default:
			delimiter := previewDelimiter
			if delimiter == "" {
				delimiter = settings.CSVSeparator
			}

			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			all, err := csvparser.ReadAll(bufio.NewReader(file), delimiter)
			if err != nil {
				return err
			}
			if len(all) > previewRows {
				all = all[:previewRows]
			}
			rows = all
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for i, row := range rows {
			fmt.Fprintf(w, "%d\t%s\n", i, strings.Join(row, "\t"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVar(&previewSheet, "sheet", "", "Worksheet name, default the first sheet")
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", xlsxparser.PreviewRows, "Number of rows to show")
	previewCmd.Flags().StringVar(&previewDelimiter, "delimiter", "", "Field separator for delimited files")
}
