package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List the instrument table",
	Long: `Print the instruments used for sizing and commissions. Without --file
the built-in futures table is listed.`,
	Args: cobra.NoArgs,
	RunE: runInstruments,
}

var instrumentsFile string

func init() {
	rootCmd.AddCommand(instrumentsCmd)
	instrumentsCmd.Flags().StringVarP(&instrumentsFile, "file", "f", "", "YAML or JSON instrument file")
}

func runInstruments(cmd *cobra.Command, args []string) error {
	db, err := loadInstruments(instrumentsFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-6s %-20s %-8s %-9s %12s %10s %8s\n",
		"Symbol", "Description", "Exchange", "Sector", "PointValue", "Margin", "Comm")
	for _, sym := range db.Symbols() {
		inst, err := db.Get(sym)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-6s %-20s %-8s %-9s %12.2f %10.2f %8.2f\n",
			inst.Symbol, inst.Description, inst.Exchange, inst.Sector,
			inst.PointValue, inst.Margin, inst.Commission)
	}
	return nil
}
