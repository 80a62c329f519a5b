package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/sectortrader/feed"
	"github.com/rustyeddy/sectortrader/risk"
	"github.com/rustyeddy/sectortrader/strategy"
)

// DateLayout is the layout of the run window dates.
const DateLayout = "2006-01-02"

// Config represents a complete backtest run
type Config struct {
	Account  AccountConfig       `json:"account" yaml:"account"`
	Strategy StrategyConfig      `json:"strategy" yaml:"strategy"`
	Run      RunConfig           `json:"run" yaml:"run"`
	Sectors  map[string][]string `json:"sectors" yaml:"sectors"`
	Data     DataConfig          `json:"data" yaml:"data"`
	Reports  ReportsConfig       `json:"reports" yaml:"reports"`
	Logging  LoggingConfig       `json:"logging" yaml:"logging"`
}

// AccountConfig holds the cash each sector starts trading with
type AccountConfig struct {
	Cash float64 `json:"cash" yaml:"cash"`
}

// StrategyConfig contains the breakout strategy parameters
type StrategyConfig struct {
	Name             string  `json:"name" yaml:"name"`
	RiskFactor       float64 `json:"risk_factor" yaml:"risk_factor"`
	Breakout         int     `json:"breakout" yaml:"breakout"`
	Stop             float64 `json:"stop" yaml:"stop"`
	ATRPeriod        int     `json:"atr_period" yaml:"atr_period"`
	FastMA           int     `json:"fast_ma" yaml:"fast_ma"`
	SlowMA           int     `json:"slow_ma" yaml:"slow_ma"`
	MAType           string  `json:"ma_type,omitempty" yaml:"ma_type,omitempty"`
	IntradayStop     bool    `json:"intraday_stop" yaml:"intraday_stop"`
	MaxMarginPct     float64 `json:"max_margin_pct,omitempty" yaml:"max_margin_pct,omitempty"`
	MaxOpenPositions int     `json:"max_open_positions,omitempty" yaml:"max_open_positions,omitempty"`
}

// RunConfig is the backtest window, each date as YYYY-MM-DD
type RunConfig struct {
	FeedStart  string `json:"feed_start" yaml:"feed_start"`
	TradeStart string `json:"trade_start" yaml:"trade_start"`
	TradeEnd   string `json:"trade_end" yaml:"trade_end"`
}

// DataConfig locates bar files and the instrument table
type DataConfig struct {
	Dir         string `json:"dir" yaml:"dir"`
	Format      string `json:"format" yaml:"format"` // auto, csv, csv.xz or parquet
	Instruments string `json:"instruments,omitempty" yaml:"instruments,omitempty"`
}

// ReportsConfig names the output files. Empty paths are skipped.
type ReportsConfig struct {
	Positions string `json:"positions,omitempty" yaml:"positions,omitempty"`
	Equity    string `json:"equity,omitempty" yaml:"equity,omitempty"`
	Returns   string `json:"returns,omitempty" yaml:"returns,omitempty"`
	Trades    string `json:"trades,omitempty" yaml:"trades,omitempty"`
	DB        string `json:"db,omitempty" yaml:"db,omitempty"`
	Org       string `json:"org,omitempty" yaml:"org,omitempty"`

	// YearlyAdjustment is the annual financing rate applied to the trade
	// ledger's net profit column, 0.05 for five percent.
	YearlyAdjustment float64 `json:"yearly_adjustment,omitempty" yaml:"yearly_adjustment,omitempty"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text or json
}

// Window is the parsed run window
type Window struct {
	FeedStart  time.Time
	TradeStart time.Time
	TradeEnd   time.Time
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Cash <= 0 {
		return fmt.Errorf("account.cash must be positive")
	}
	if c.Strategy.RiskFactor <= 0 || c.Strategy.RiskFactor > 1 {
		return fmt.Errorf("strategy.risk_factor must be between 0 and 1")
	}
	if _, err := c.Window(); err != nil {
		return err
	}
	if len(c.Sectors) == 0 {
		return fmt.Errorf("at least one sector is required")
	}
	for _, name := range c.SectorNames() {
		if len(c.Sectors[name]) == 0 {
			return fmt.Errorf("sector %s has no symbols", name)
		}
	}
	switch c.Data.Format {
	case "", feed.FormatAuto, feed.FormatCSV, feed.FormatCSVXZ, feed.FormatParquet:
	default:
		return fmt.Errorf("data.format %q is not one of auto, csv, csv.xz, parquet", c.Data.Format)
	}
	if c.Reports.YearlyAdjustment < 0 || c.Reports.YearlyAdjustment >= 1 {
		return fmt.Errorf("reports.yearly_adjustment must be in [0, 1)")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json'")
	}
	if err := c.BreakoutConfig(time.Time{}).Validate(); err != nil {
		return err
	}
	return nil
}

// Window parses the run dates and checks their order.
func (c *Config) Window() (Window, error) {
	var w Window
	fields := []struct {
		name string
		val  string
		dst  *time.Time
	}{
		{"run.feed_start", c.Run.FeedStart, &w.FeedStart},
		{"run.trade_start", c.Run.TradeStart, &w.TradeStart},
		{"run.trade_end", c.Run.TradeEnd, &w.TradeEnd},
	}
	for _, f := range fields {
		t, err := time.Parse(DateLayout, f.val)
		if err != nil {
			return Window{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = t
	}
	if w.FeedStart.After(w.TradeStart) || w.TradeStart.After(w.TradeEnd) {
		return Window{}, fmt.Errorf("run window must satisfy feed_start <= trade_start <= trade_end")
	}
	return w, nil
}

// SectorNames returns the configured sectors in lexical order.
func (c *Config) SectorNames() []string {
	out := make([]string, 0, len(c.Sectors))
	for s := range c.Sectors {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// BreakoutConfig converts the strategy section, blocking entries before
// tradeStart.
func (c *Config) BreakoutConfig(tradeStart time.Time) strategy.Config {
	s := c.Strategy
	return strategy.Config{
		RiskFactor:   s.RiskFactor,
		Breakout:     s.Breakout,
		Stop:         s.Stop,
		ATRPeriod:    s.ATRPeriod,
		FastMA:       s.FastMA,
		SlowMA:       s.SlowMA,
		MAType:       s.MAType,
		IntradayStop: s.IntradayStop,
		TradeStart:   tradeStart,
		Policy: risk.Policy{
			MaxMarginPct:     s.MaxMarginPct,
			MaxOpenPositions: s.MaxOpenPositions,
		},
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	d := strategy.DefaultConfig()
	return &Config{
		Account: AccountConfig{Cash: 1000000},
		Strategy: StrategyConfig{
			Name:         "breakout",
			RiskFactor:   d.RiskFactor,
			Breakout:     d.Breakout,
			Stop:         d.Stop,
			ATRPeriod:    d.ATRPeriod,
			FastMA:       d.FastMA,
			SlowMA:       d.SlowMA,
			MAType:       d.MAType,
			IntradayStop: d.IntradayStop,
			MaxMarginPct: 0.5,
		},
		Run: RunConfig{
			FeedStart:  "2010-01-01",
			TradeStart: "2011-01-01",
			TradeEnd:   "2020-01-01",
		},
		Sectors: map[string][]string{
			"currency": {"EC", "JY"},
			"energy":   {"CL", "NG"},
			"metals":   {"GC", "SI"},
			"rates":    {"TY", "US"},
		},
		Data: DataConfig{
			Dir:    "./data",
			Format: feed.FormatAuto,
		},
		Reports: ReportsConfig{
			Positions: "./positions.csv",
			Equity:    "./equity.csv",
			Returns:   "./returns.csv",
			Trades:    "./trades.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
