package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ginjaninja78/price-compare/internal/config"
	"github.com/ginjaninja78/price-compare/internal/resultio"
	"github.com/ginjaninja78/price-compare/internal/types"
)

// printRows writes result rows as an aligned table.
func printRows(out io.Writer, rows []types.ResultRow, s config.Settings) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No results to display.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		resultio.HeaderItem, resultio.HeaderDescription, resultio.HeaderPrice, resultio.HeaderQuantity, resultio.HeaderSource)
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.Item.Text,
			row.Description,
			resultio.FormatPrice(row.Price, s),
			resultio.FormatQuantity(row.Quantity, s),
			resultio.SourceCell(row.SourceFile))
	}
	w.Flush()
}

// printTotals writes per-source order totals.
func printTotals(out io.Writer, totals []types.SourceTotal, s config.Settings) {
	if len(totals) == 0 {
		fmt.Fprintln(out, "No quantities entered.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Source File\tRows\tTotal")
	for _, st := range totals {
		fmt.Fprintf(w, "%s\t%d\t%s\n", resultio.SourceCell(st.SourceFile), st.Rows, resultio.FormatPrice(st.Total, s))
	}
	w.Flush()
}

// readResultsFile loads a previously exported results file.
func readResultsFile(path string) ([]types.ResultRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer file.Close()

	return resultio.Parse(file, settings)
}
