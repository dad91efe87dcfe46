package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/price-compare/internal/config"
)

var settingsFlags config.Settings

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or save the separator settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings in effect",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Settings file:       %s\n", cfgFile)
		fmt.Fprintf(out, "csv_separator:       %q\n", settings.CSVSeparator)
		fmt.Fprintf(out, "decimal_separator:   %q\n", settings.DecimalSeparator)
		fmt.Fprintf(out, "thousands_separator: %q\n", settings.ThousandsSeparator)
	},
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Change settings and write them to the settings file",
	Long: `The save command starts from the settings in effect, applies the given
flags and writes the result. Unchanged keys keep their current value.

Example:
  pricecompare settings save --csv-separator ";" --decimal-separator "," --thousands-separator "."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		updated := settings

		if cmd.Flags().Changed("csv-separator") {
			updated.CSVSeparator = settingsFlags.CSVSeparator
		}
		if cmd.Flags().Changed("decimal-separator") {
			updated.DecimalSeparator = settingsFlags.DecimalSeparator
		}
		if cmd.Flags().Changed("thousands-separator") {
			updated.ThousandsSeparator = settingsFlags.ThousandsSeparator
		}

		if err := config.SaveSettings(cfgFile, updated); err != nil {
			return err
		}

		settings = updated
		logger.Infof("Saved settings to %s", cfgFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSaveCmd)

	f := settingsSaveCmd.Flags()
	f.StringVar(&settingsFlags.CSVSeparator, "csv-separator", config.DefaultCSVSeparator, "Field separator of exported files")
	f.StringVar(&settingsFlags.DecimalSeparator, "decimal-separator", config.DefaultDecimalSeparator, "Decimal separator of prices and quantities")
	f.StringVar(&settingsFlags.ThousandsSeparator, "thousands-separator", config.DefaultThousandsSeparator, "Thousands separator of prices")
}
