package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sectortrader",
	Short: "Multi-sector futures breakout backtester",
	Long: `Sectortrader backtests a breakout strategy over several futures sectors
at once and reports the consolidated account.

It provides tools for:
  - Running a backtest from a configuration file
  - Writing positions, equity, returns and trade ledger reports
  - Archiving runs in a SQLite journal and querying them
  - Listing the instrument table used for sizing`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
