// Package feed provides time-ordered bar streams for the backtest clock.
//
// A Series holds one symbol's bars behind a cursor. A MultiFeed merges the
// series of one sector and emits every bar group up to a requested
// timestamp to its subscribed handlers, in subscription order.
package feed

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/sectortrader/market"
)

var ErrDuplicateSymbol = errors.New("feed: duplicate symbol")

// Handler is notified once per emitted bar group.
type Handler interface {
	OnBars(bars market.Bars) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(bars market.Bars) error

func (f HandlerFunc) OnBars(bars market.Bars) error { return f(bars) }

// Series is an ordered run of bars for one symbol.
type Series struct {
	Symbol string

	bars []market.Bar
	pos  int
}

// NewSeries validates that bar times strictly increase. The symbol is
// stamped on every bar.
func NewSeries(symbol string, bars []market.Bar) (*Series, error) {
	if symbol == "" {
		return nil, fmt.Errorf("feed: series symbol is required")
	}
	out := make([]market.Bar, len(bars))
	for i, b := range bars {
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return nil, fmt.Errorf("feed: %s bars out of order at %s", symbol, b.Time.Format(time.RFC3339))
		}
		b.Symbol = symbol
		out[i] = b
	}
	return &Series{Symbol: symbol, bars: out}, nil
}

func (s *Series) Len() int { return len(s.bars) }

// SetCursor positions the series on the first bar at or after t.
func (s *Series) SetCursor(t time.Time) {
	s.pos = sort.Search(len(s.bars), func(i int) bool {
		return !s.bars[i].Time.Before(t)
	})
}

// Peek returns the time of the next unread bar.
func (s *Series) Peek() (time.Time, bool) {
	if s.pos >= len(s.bars) {
		return time.Time{}, false
	}
	return s.bars[s.pos].Time, true
}

func (s *Series) advance() market.Bar {
	b := s.bars[s.pos]
	s.pos++
	return b
}

// MultiFeed merges several series and drives subscribed handlers.
type MultiFeed struct {
	series   []*Series
	handlers []Handler
}

func NewMultiFeed(series ...*Series) (*MultiFeed, error) {
	f := &MultiFeed{}
	for _, s := range series {
		if err := f.Register(s); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Register adds a series; one per symbol.
func (f *MultiFeed) Register(s *Series) error {
	for _, have := range f.series {
		if have.Symbol == s.Symbol {
			return fmt.Errorf("%w: %s", ErrDuplicateSymbol, s.Symbol)
		}
	}
	f.series = append(f.series, s)
	return nil
}

// Subscribe appends a handler. Handlers run in the order they subscribed,
// so a broker that must see prices before its strategy subscribes first.
func (f *MultiFeed) Subscribe(h Handler) {
	f.handlers = append(f.handlers, h)
}

// Symbols returns the registered symbols in registration order.
func (f *MultiFeed) Symbols() []string {
	out := make([]string, len(f.series))
	for i, s := range f.series {
		out[i] = s.Symbol
	}
	return out
}

func (f *MultiFeed) SetCursor(t time.Time) {
	for _, s := range f.series {
		s.SetCursor(t)
	}
}

// NextBarsDate returns the earliest unread bar time across all series.
func (f *MultiFeed) NextBarsDate() (time.Time, bool) {
	var (
		next  time.Time
		found bool
	)
	for _, s := range f.series {
		t, ok := s.Peek()
		if !ok {
			continue
		}
		if !found || t.Before(next) {
			next = t
			found = true
		}
	}
	return next, found
}

// Start emits every bar group with a timestamp at or before last.
func (f *MultiFeed) Start(last time.Time) error {
	for {
		t, ok := f.NextBarsDate()
		if !ok || t.After(last) {
			return nil
		}

		group := make([]market.Bar, 0, len(f.series))
		for _, s := range f.series {
			if pt, ok := s.Peek(); ok && pt.Equal(t) {
				group = append(group, s.advance())
			}
		}

		bars := market.NewBars(t, group...)
		for _, h := range f.handlers {
			if err := h.OnBars(bars); err != nil {
				return fmt.Errorf("feed: bars at %s: %w", t.Format(time.RFC3339), err)
			}
		}
	}
}
