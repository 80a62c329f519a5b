// market/instruments.go
package market

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrUnknownInstrument = errors.New("unknown instrument")

// Instrument is the static contract metadata the simulated brokers and the
// trade ledger need.
type Instrument struct {
	Symbol      string  `json:"symbol" yaml:"symbol"`
	Description string  `json:"description" yaml:"description"`
	Exchange    string  `json:"exchange,omitempty" yaml:"exchange,omitempty"`
	Sector      string  `json:"sector,omitempty" yaml:"sector,omitempty"`
	PointValue  float64 `json:"point_value" yaml:"point_value"`
	Margin      float64 `json:"margin" yaml:"margin"`         // initial margin per contract
	Commission  float64 `json:"commission" yaml:"commission"` // per contract, per side
}

func (i Instrument) validate() error {
	if strings.TrimSpace(i.Symbol) == "" {
		return fmt.Errorf("instrument symbol is required")
	}
	if i.PointValue <= 0 {
		return fmt.Errorf("instrument %s: point_value must be positive", i.Symbol)
	}
	if i.Margin < 0 || i.Commission < 0 {
		return fmt.Errorf("instrument %s: margin and commission must not be negative", i.Symbol)
	}
	return nil
}

// InstrumentDB is a registry of instruments keyed by symbol.
type InstrumentDB struct {
	mu    sync.RWMutex
	insts map[string]Instrument
}

func NewInstrumentDB(insts ...Instrument) (*InstrumentDB, error) {
	db := &InstrumentDB{insts: make(map[string]Instrument, len(insts))}
	for _, i := range insts {
		if err := db.Register(i); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Register adds or replaces an instrument.
func (db *InstrumentDB) Register(i Instrument) error {
	if err := i.validate(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.insts[i.Symbol] = i
	return nil
}

func (db *InstrumentDB) Get(symbol string) (Instrument, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	i, ok := db.insts[symbol]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: %s", ErrUnknownInstrument, symbol)
	}
	return i, nil
}

// Symbols returns every registered symbol in lexical order.
func (db *InstrumentDB) Symbols() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]string, 0, len(db.insts))
	for s := range db.insts {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

type instrumentFile struct {
	Instruments []Instrument `json:"instruments" yaml:"instruments"`
}

// LoadInstruments reads an instrument list from a YAML or JSON file.
func LoadInstruments(path string) (*InstrumentDB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instruments file: %w", err)
	}

	var f instrumentFile
	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, &f); err != nil {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse instruments (tried YAML and JSON): %w", err)
		}
	}
	return NewInstrumentDB(f.Instruments...)
}

// DefaultInstruments returns a small set of liquid futures contracts.
func DefaultInstruments() []Instrument {
	return []Instrument{
		{Symbol: "CL", Description: "Crude Oil", Exchange: "NYMEX", Sector: "energy", PointValue: 1000, Margin: 6000, Commission: 2.5},
		{Symbol: "NG", Description: "Natural Gas", Exchange: "NYMEX", Sector: "energy", PointValue: 10000, Margin: 3500, Commission: 2.5},
		{Symbol: "GC", Description: "Gold", Exchange: "COMEX", Sector: "metals", PointValue: 100, Margin: 8000, Commission: 2.5},
		{Symbol: "SI", Description: "Silver", Exchange: "COMEX", Sector: "metals", PointValue: 5000, Margin: 9000, Commission: 2.5},
		{Symbol: "ES", Description: "E-mini S&P 500", Exchange: "CME", Sector: "equity", PointValue: 50, Margin: 12000, Commission: 2.0},
		{Symbol: "NQ", Description: "E-mini Nasdaq 100", Exchange: "CME", Sector: "equity", PointValue: 20, Margin: 17000, Commission: 2.0},
		{Symbol: "TY", Description: "10-Year T-Note", Exchange: "CBOT", Sector: "rates", PointValue: 1000, Margin: 2000, Commission: 1.5},
		{Symbol: "US", Description: "30-Year T-Bond", Exchange: "CBOT", Sector: "rates", PointValue: 1000, Margin: 4000, Commission: 1.5},
		{Symbol: "EC", Description: "Euro FX", Exchange: "CME", Sector: "currency", PointValue: 125000, Margin: 2500, Commission: 2.0},
		{Symbol: "JY", Description: "Japanese Yen", Exchange: "CME", Sector: "currency", PointValue: 12500000, Margin: 3000, Commission: 2.0},
		{Symbol: "C", Description: "Corn, Yellow #2", Exchange: "CBOT", Sector: "ags", PointValue: 50, Margin: 1500, Commission: 2.5},
		{Symbol: "W", Description: "Wheat", Exchange: "CBOT", Sector: "ags", PointValue: 50, Margin: 1800, Commission: 2.5},
	}
}
