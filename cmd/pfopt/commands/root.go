package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/pfopt/pkg/config"
	"github.com/wonny/pfopt/pkg/logger"
)

var (
	// Global flags
	logLevel string
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pfopt",
	Short: "pfopt - Monte Carlo portfolio allocation",
	Long: `pfopt Unified CLI

Simulates random long-only portfolios over historical prices, scores them
with country-specific market assumptions and recommends one allocation for
an investor profile (risk tolerance, goal, horizon).

Usage:
  go run ./cmd/pfopt [command]

Examples:
  go run ./cmd/pfopt simulate --files AAA_prices.csv,BBB_prices.csv,CCC_prices.csv --country India
  go run ./cmd/pfopt countries
  go run ./cmd/pfopt api --port 8089
  go run ./cmd/pfopt refresh
  go run ./cmd/pfopt scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}

// loadConfig config + logger with global flag overrides
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, logger.New(cfg), nil
}
