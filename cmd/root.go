// =============================================================================
// Price Compare - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (pricecompare)
//   ├── compareCmd  (pricecompare compare)
//   ├── splitCmd    (pricecompare split)
//   ├── totalsCmd   (pricecompare totals)
//   ├── previewCmd  (pricecompare preview)
//   ├── historyCmd  (pricecompare history [show|export])
//   ├── settingsCmd (pricecompare settings [show|save])
//   └── versionCmd  (pricecompare version)
//
// Before any subcommand runs, the root command reads PRICECOMPARE_* defaults
// from the environment (and a .env file), builds the logger and loads the
// settings file, so subcommands find both ready in package variables.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/price-compare/internal/config"
	"github.com/ginjaninja78/price-compare/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the settings file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logFormat selects "text" or "json" log output.
var logFormat string

// logger is built in PersistentPreRunE.
var logger *logrus.Logger

// settings are the loaded separators, defaults when the file is absent.
var settings config.Settings

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "pricecompare",
	Short: "Price Compare - find the lowest supplier price for every item",
	Long: `Price Compare reads supplier price lists (.xlsx, .csv, .txt), matches items
across them by their item code and keeps the lowest price for each item.

The result can be shown on screen, exported as one combined file, split
into one order file per supplier, archived and reloaded later.

Example Usage:
  pricecompare compare --sources sources.yaml --out output
  pricecompare compare --dir lists --item Code --description Name --price Price
  pricecompare split --in output/best_prices.csv --out orders
  pricecompare totals --in output/best_prices.csv
  pricecompare settings save --decimal-separator , --thousands-separator .`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := config.LoadEnv()

		flags := cmd.Flags()
		if env.SettingsFile != "" && !flags.Changed("config") {
			cfgFile = env.SettingsFile
		}
		if env.LogFormat != "" && !flags.Changed("log-format") {
			logFormat = env.LogFormat
		}

		level := "info"
		if env.LogLevel != "" {
			level = env.LogLevel
		}
		if verbose {
			level = "debug"
		}

		var err error
		logger, err = logging.New(level, logFormat, os.Stderr)
		if err != nil {
			return err
		}

		settings, err = config.LoadSettings(cfgFile)
		if err != nil {
			logger.Warnf("Using default settings: %v", err)
		}
		logger.Debugf("Settings: csv=%q decimal=%q thousands=%q",
			settings.CSVSeparator, settings.DecimalSeparator, settings.ThousandsSeparator)

		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"settings.yaml",
		"Path to the settings file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"text",
		"Log output format: text or json",
	)
}
