package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/sectortrader/backtest"
	"github.com/rustyeddy/sectortrader/config"
	"github.com/rustyeddy/sectortrader/internal/logging"
	"github.com/rustyeddy/sectortrader/journal"
	"github.com/rustyeddy/sectortrader/market"
	"github.com/rustyeddy/sectortrader/pkg/id"
	"github.com/rustyeddy/sectortrader/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	Long: `Run a multi-sector backtest using settings from a configuration file.

Each sector trades its own symbols with a full cash allocation. The
positions, equity and returns reports and the trade ledger are written to
the paths in the reports section, and the run is archived when a journal
database is configured.

Example:
  sectortrader run -f backtest.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runLogLevel   string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "override logging.level")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runLogLevel != "" {
		cfg.Logging.Level = runLogLevel
	}
	return runBacktest(cmd.Context(), cmd.OutOrStdout(), cfg)
}

func loadInstruments(path string) (*market.InstrumentDB, error) {
	if path == "" {
		return market.NewInstrumentDB(market.DefaultInstruments()...)
	}
	return market.LoadInstruments(path)
}

func runBacktest(ctx context.Context, out io.Writer, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	w, err := cfg.Window()
	if err != nil {
		return err
	}
	insts, err := loadInstruments(cfg.Data.Instruments)
	if err != nil {
		return fmt.Errorf("instruments: %w", err)
	}

	strat := cfg.BreakoutConfig(w.TradeStart)
	groups, err := backtest.Setup(backtest.SetupOptions{
		Sectors:      cfg.Sectors,
		DataDir:      cfg.Data.Dir,
		DataFormat:   cfg.Data.Format,
		Instruments:  insts,
		StartingCash: cfg.Account.Cash,
		Strategy:     strat,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	em, err := report.Create(cfg.SectorNames(), report.Paths{
		Positions: cfg.Reports.Positions,
		Equity:    cfg.Reports.Equity,
		Returns:   cfg.Reports.Returns,
	})
	if err != nil {
		return fmt.Errorf("reports: %w", err)
	}

	runID := id.New()
	opts := backtest.Options{
		StartingCash:     cfg.Account.Cash,
		Emitter:          em,
		Instruments:      insts,
		YearlyAdjustment: cfg.Reports.YearlyAdjustment,
		RunID:            runID,
		Logger:           log.With("run_id", runID),
	}

	var db *journal.SQLite
	if cfg.Reports.DB != "" {
		db, err = journal.NewSQLite(cfg.Reports.DB)
		if err != nil {
			em.Close()
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()
		opts.Journal = db
	}

	c, err := backtest.NewController(groups, opts)
	if err != nil {
		em.Close()
		return err
	}
	if err := c.Run(w.FeedStart, w.TradeStart, w.TradeEnd); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if cfg.Reports.Trades != "" {
		err = c.WriteAllTrades(cfg.Reports.Trades)
	} else {
		err = c.WriteTrades(io.Discard)
	}
	if err != nil {
		return err
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	summary := c.Summary(cfg.Strategy.Name, strat.Variant(), raw)

	if db != nil {
		if err := db.RecordRun(ctx, summary); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if cfg.Reports.Org != "" {
		if err := journal.WriteRunOrg(cfg.Reports.Org, summary); err != nil {
			return fmt.Errorf("write org summary: %w", err)
		}
	}

	backtest.PrintSummary(out, summary)
	return nil
}
