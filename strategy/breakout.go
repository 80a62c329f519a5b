// Package strategy implements the sector trend follower driven by the
// backtest: a Donchian breakout filtered by a moving average trend and
// protected by an ATR trailing stop.
package strategy

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rustyeddy/sectortrader/broker"
	"github.com/rustyeddy/sectortrader/feed"
	"github.com/rustyeddy/sectortrader/indicators"
	"github.com/rustyeddy/sectortrader/market"
	"github.com/rustyeddy/sectortrader/risk"
	"github.com/rustyeddy/sectortrader/sim"
)

var ErrInvalidConfig = errors.New("strategy: invalid config")

// Trend filter moving average types.
const (
	MATypeSMA = "sma"
	MATypeEMA = "ema"
)

type Config struct {
	RiskFactor float64 `yaml:"risk_factor" json:"risk_factor"` // fraction of equity per ATR, 0.002
	Breakout   int     `yaml:"breakout" json:"breakout"`       // channel length in bars, 50
	Stop       float64 `yaml:"stop" json:"stop"`               // trailing stop in ATRs, 3
	ATRPeriod  int     `yaml:"atr_period" json:"atr_period"`   // 100
	FastMA     int     `yaml:"fast_ma" json:"fast_ma"`         // 50
	SlowMA     int     `yaml:"slow_ma" json:"slow_ma"`         // 100
	MAType     string  `yaml:"ma_type" json:"ma_type"`         // sma or ema, empty is sma

	// IntradayStop rests the stop at the broker where the bar range can
	// trigger it. Otherwise the stop is only checked against the close.
	IntradayStop bool `yaml:"intraday_stop" json:"intraday_stop"`

	// No new entries before TradeStart. Zero allows entries as soon as
	// the indicators are ready.
	TradeStart time.Time `yaml:"-" json:"-"`

	Policy risk.Policy `yaml:"-" json:"-"`
}

func DefaultConfig() Config {
	return Config{
		RiskFactor:   0.002,
		Breakout:     50,
		Stop:         3,
		ATRPeriod:    100,
		FastMA:       50,
		SlowMA:       100,
		MAType:       MATypeEMA,
		IntradayStop: true,
	}
}

func (c Config) Validate() error {
	switch {
	case c.RiskFactor <= 0 || c.RiskFactor >= 1:
		return fmt.Errorf("%w: risk_factor %v", ErrInvalidConfig, c.RiskFactor)
	case c.Breakout <= 0:
		return fmt.Errorf("%w: breakout %d", ErrInvalidConfig, c.Breakout)
	case c.Stop <= 0:
		return fmt.Errorf("%w: stop %v", ErrInvalidConfig, c.Stop)
	case c.ATRPeriod <= 0:
		return fmt.Errorf("%w: atr_period %d", ErrInvalidConfig, c.ATRPeriod)
	case c.FastMA <= 0 || c.SlowMA <= 0 || c.FastMA >= c.SlowMA:
		return fmt.Errorf("%w: fast_ma %d must be below slow_ma %d", ErrInvalidConfig, c.FastMA, c.SlowMA)
	case c.MAType != "" && c.MAType != MATypeSMA && c.MAType != MATypeEMA:
		return fmt.Errorf("%w: ma_type %q", ErrInvalidConfig, c.MAType)
	}
	return nil
}

// Variant names the stop handling for logs and reports.
func (c Config) Variant() string {
	if c.IntradayStop {
		return "intraday-stop"
	}
	return "close-only"
}

type symbolState struct {
	atr     *indicators.ATR
	fast    indicators.Indicator
	slow    indicators.Indicator
	channel *indicators.Donchian

	// best close since entry, the trailing stop anchor
	extreme float64
	stop    float64
}

func newSymbolState(cfg Config) *symbolState {
	st := &symbolState{
		atr:     indicators.NewATR(cfg.ATRPeriod),
		channel: indicators.NewDonchian(cfg.Breakout),
	}
	if cfg.MAType == MATypeEMA {
		st.fast, st.slow = indicators.NewEMA(cfg.FastMA), indicators.NewEMA(cfg.SlowMA)
	} else {
		st.fast, st.slow = indicators.NewMA(cfg.FastMA), indicators.NewMA(cfg.SlowMA)
	}
	return st
}

func (s *symbolState) update(b market.Bar) {
	s.atr.Update(b)
	s.fast.Update(b)
	s.slow.Update(b)
	s.channel.Update(b)
}

func (s *symbolState) ready() bool {
	return s.atr.Ready() && s.slow.Ready() && s.channel.Ready()
}

// Breakout trades every symbol of one sector through a single sim broker.
type Breakout struct {
	cfg     Config
	engine  *sim.Engine
	insts   sim.Instruments
	symbols map[string]*symbolState
	log     *slog.Logger
}

func NewBreakout(cfg Config, engine *sim.Engine, insts sim.Instruments, log *slog.Logger) (*Breakout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Breakout{
		cfg:     cfg,
		engine:  engine,
		insts:   insts,
		symbols: make(map[string]*symbolState),
		log:     log,
	}, nil
}

// Attach subscribes the broker and then the strategy to f, so stops and
// marks are settled before the strategy sees the bars.
func (s *Breakout) Attach(f *feed.MultiFeed) {
	f.Subscribe(s.engine)
	f.Subscribe(s)
}

func (s *Breakout) Config() Config { return s.cfg }

func (s *Breakout) Broker() broker.Broker { return s.engine }

// Result is the sector's broker equity.
func (s *Breakout) Result() float64 { return s.engine.Equity() }

func (s *Breakout) Positions() map[string]broker.Position {
	return s.engine.Positions()
}

// ExitPositions closes everything at the last marks.
func (s *Breakout) ExitPositions() error {
	for _, st := range s.symbols {
		st.extreme, st.stop = 0, 0
	}
	return s.engine.CloseAll(sim.ReasonEndOfTest)
}

func (s *Breakout) OnBars(bars market.Bars) error {
	for _, sym := range bars.Symbols() {
		b, _ := bars.Get(sym)
		st, ok := s.symbols[sym]
		if !ok {
			st = newSymbolState(s.cfg)
			s.symbols[sym] = st
		}
		st.update(b)
		if !st.ready() {
			continue
		}

		if p, open := s.engine.Position(sym); open {
			if err := s.manage(p, b, st); err != nil {
				return fmt.Errorf("%s: %w", sym, err)
			}
			continue
		}
		st.extreme, st.stop = 0, 0

		if !s.cfg.TradeStart.IsZero() && b.Time.Before(s.cfg.TradeStart) {
			continue
		}
		if err := s.enter(b, st); err != nil {
			return fmt.Errorf("%s: %w", sym, err)
		}
	}
	return nil
}

func (s *Breakout) manage(p broker.Position, b market.Bar, st *symbolState) error {
	dist := s.cfg.Stop * st.atr.Value()
	if st.extreme == 0 {
		st.extreme = p.EntryPrice
	}

	var stop float64
	if p.IsLong() {
		st.extreme = math.Max(st.extreme, b.Close)
		stop = st.extreme - dist
		if st.stop != 0 {
			stop = math.Max(stop, st.stop)
		}
	} else {
		st.extreme = math.Min(st.extreme, b.Close)
		stop = st.extreme + dist
		if st.stop != 0 {
			stop = math.Min(stop, st.stop)
		}
	}
	st.stop = stop

	if s.cfg.IntradayStop {
		return s.engine.SetStop(p.Symbol, stop)
	}

	if (p.IsLong() && b.Close <= stop) || (!p.IsLong() && b.Close >= stop) {
		s.log.Debug("close-only stop", "symbol", p.Symbol, "close", b.Close, "stop", stop)
		return s.engine.Close(p.Symbol, sim.ReasonStopLoss)
	}
	return nil
}

func (s *Breakout) enter(b market.Bar, st *symbolState) error {
	var side float64
	switch {
	case st.fast.Value() > st.slow.Value() && b.Close >= st.channel.Upper():
		side = 1
	case st.fast.Value() < st.slow.Value() && b.Close <= st.channel.Lower():
		side = -1
	default:
		return nil
	}

	inst, err := s.insts.Get(b.Symbol)
	if err != nil {
		return err
	}
	atr := st.atr.Value()
	size := risk.Calculate(risk.Inputs{
		Equity:     s.engine.Equity(),
		RiskFactor: s.cfg.RiskFactor,
		ATR:        atr,
		PointValue: inst.PointValue,
	})
	if size.Units < 1 {
		return nil
	}

	units := side * size.Units
	stop := b.Close - side*s.cfg.Stop*atr

	acct := s.engine.Account()
	d := risk.Evaluate(s.cfg.Policy, risk.TradeIntent{
		Symbol:     b.Symbol,
		Units:      units,
		Entry:      b.Close,
		Stop:       stop,
		PointValue: inst.PointValue,
		Margin:     inst.Margin,
	}, risk.AccountSnapshot{
		Equity:     acct.Equity,
		MarginUsed: acct.MarginUsed,
		Open:       acct.Open,
	})
	if !d.Allowed {
		s.log.Debug("entry rejected", "symbol", b.Symbol, "violations", d.Violations)
		return nil
	}

	resting := 0.0
	if s.cfg.IntradayStop {
		resting = stop
	}
	if _, err := s.engine.Open(b.Symbol, units, resting); err != nil {
		return err
	}
	st.extreme = b.Close
	st.stop = stop
	s.log.Debug("entry", "symbol", b.Symbol, "units", units, "price", b.Close, "stop", stop)
	return nil
}
