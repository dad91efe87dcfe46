// =============================================================================
// Price Compare - Main Entry Point
// =============================================================================
//
// USAGE:
//   pricecompare compare    - Compare price lists and export the best prices
//   pricecompare split      - Split a results file into per-supplier orders
//   pricecompare totals     - Show order totals per supplier
//   pricecompare history    - List, show or re-export archived runs
//   pricecompare settings   - Show or save separator settings
//   pricecompare version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Reading, normalizing, reconciling and exporting
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/price-compare/cmd"
)

func main() {
	cmd.Execute()
}
