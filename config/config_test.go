package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/sectortrader/strategy"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 1000000.0, cfg.Account.Cash)
	assert.Equal(t, "breakout", cfg.Strategy.Name)
	assert.Equal(t, []string{"currency", "energy", "metals", "rates"}, cfg.SectorNames())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"zero cash", func(c *Config) { c.Account.Cash = 0 }, "account.cash must be positive"},
		{"invalid risk factor", func(c *Config) { c.Strategy.RiskFactor = 1.5 }, "strategy.risk_factor must be between 0 and 1"},
		{"bad date", func(c *Config) { c.Run.TradeStart = "2011/01/01" }, "run.trade_start"},
		{"window out of order", func(c *Config) { c.Run.TradeEnd = "2010-06-01" }, "feed_start <= trade_start <= trade_end"},
		{"no sectors", func(c *Config) { c.Sectors = nil }, "at least one sector is required"},
		{"empty sector", func(c *Config) { c.Sectors["energy"] = nil }, "sector energy has no symbols"},
		{"unknown format", func(c *Config) { c.Data.Format = "xlsx" }, "data.format"},
		{"negative financing", func(c *Config) { c.Reports.YearlyAdjustment = -0.01 }, "reports.yearly_adjustment"},
		{"financing rate", func(c *Config) { c.Reports.YearlyAdjustment = 0.05 }, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"fast above slow", func(c *Config) { c.Strategy.FastMA = 200 }, "fast_ma 200 must be below slow_ma"},
		{"unknown ma type", func(c *Config) { c.Strategy.MAType = "wma" }, `ma_type "wma"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWindowAndBreakoutConfig(t *testing.T) {
	cfg := Default()
	w, err := cfg.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), w.TradeStart)

	sc := cfg.BreakoutConfig(w.TradeStart)
	assert.Equal(t, w.TradeStart, sc.TradeStart)
	assert.Equal(t, cfg.Strategy.Breakout, sc.Breakout)
	assert.Equal(t, 0.5, sc.Policy.MaxMarginPct)
	assert.Equal(t, strategy.MATypeEMA, sc.MAType)
	assert.Equal(t, "intraday-stop", sc.Variant())
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Strategy.IntradayStop = false
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Account.Cash, loaded.Account.Cash)
			assert.Equal(t, cfg.Strategy, loaded.Strategy)
			assert.Equal(t, cfg.Run, loaded.Run)
			assert.Equal(t, cfg.Sectors, loaded.Sectors)
			assert.Equal(t, cfg.Reports, loaded.Reports)
		})
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  cash: 0\n"), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config")
}
