// Package report writes the backtest's positions, equity and returns
// streams and the closed trade ledger.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// DateTimeFormat is used for every timestamp written to a report.
const DateTimeFormat = "2006-01-02 15:04:05"

var ErrClosed = errors.New("report: emitter closed")

// Counts is the number of open long and short positions in a sector.
type Counts struct {
	Long  int
	Short int
}

// Value is a sector's equity and margin at a point in time.
type Value struct {
	Equity float64
	Margin float64
}

// Return is a profit split expressed in percent of starting equity.
type Return struct {
	Long  float64
	Short float64
	Total float64
}

// Paths names the files Create opens. An empty path discards that stream.
type Paths struct {
	Positions string
	Equity    string
	Returns   string
}

type stream struct {
	wc     io.WriteCloser
	w      *csv.Writer
	header bool
}

func newStream(wc io.WriteCloser) *stream {
	if wc == nil {
		wc = nopCloser{io.Discard}
	}
	return &stream{wc: wc, w: csv.NewWriter(wc)}
}

func (s *stream) write(header func() []string, row []string) error {
	if !s.header {
		if err := s.w.Write(header()); err != nil {
			return err
		}
		s.header = true
	}
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Emitter owns the three report streams of a run. Each stream writes its
// header lazily ahead of its first row. Sectors are always written in
// lexical order.
type Emitter struct {
	sectors   []string
	positions *stream
	equity    *stream
	returns   *stream
	closed    bool
}

// NewEmitter wraps already open writers. nil writers discard their rows.
func NewEmitter(sectors []string, positions, equity, returns io.WriteCloser) *Emitter {
	sorted := append([]string(nil), sectors...)
	sort.Strings(sorted)
	return &Emitter{
		sectors:   sorted,
		positions: newStream(positions),
		equity:    newStream(equity),
		returns:   newStream(returns),
	}
}

// Create opens the files named by p and returns an Emitter over them.
func Create(sectors []string, p Paths) (*Emitter, error) {
	var opened []io.WriteCloser
	open := func(path string) (io.WriteCloser, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			for _, c := range opened {
				c.Close()
			}
			return nil, fmt.Errorf("report: %w", err)
		}
		opened = append(opened, f)
		return f, nil
	}

	pos, err := open(p.Positions)
	if err != nil {
		return nil, err
	}
	eq, err := open(p.Equity)
	if err != nil {
		return nil, err
	}
	ret, err := open(p.Returns)
	if err != nil {
		return nil, err
	}
	return NewEmitter(sectors, pos, eq, ret), nil
}

func (e *Emitter) Sectors() []string { return e.sectors }

// Positions writes one row of open position counts.
func (e *Emitter) Positions(t time.Time, counts map[string]Counts) error {
	if e.closed {
		return ErrClosed
	}
	row := []string{t.Format(DateTimeFormat)}
	var total Counts
	for _, sec := range e.sectors {
		c := counts[sec]
		row = append(row, fmt.Sprintf("%d", c.Long), fmt.Sprintf("%d", c.Short))
		total.Long += c.Long
		total.Short += c.Short
	}
	row = append(row, fmt.Sprintf("%d", total.Long), fmt.Sprintf("%d", total.Short))

	return e.positions.write(func() []string {
		return e.header([]string{"Datetime"}, "-Long", "-Short", "Total-Long", "Total-Short")
	}, row)
}

// Equity writes one row of sector equity and margin followed by the
// consolidated totals.
func (e *Emitter) Equity(t time.Time, sectors map[string]Value, total Value) error {
	if e.closed {
		return ErrClosed
	}
	row := []string{t.Format(DateTimeFormat)}
	for _, sec := range e.sectors {
		v := sectors[sec]
		row = append(row, money(v.Equity), money(v.Margin))
	}
	row = append(row, money(total.Equity), money(total.Margin))

	return e.equity.write(func() []string {
		return e.header([]string{"Datetime"}, "-Equity", "-Margin", "Total-Equity", "Total-Margin")
	}, row)
}

// Returns writes the single returns row.
func (e *Emitter) Returns(sectors map[string]Return, total Return) error {
	if e.closed {
		return ErrClosed
	}
	var row []string
	for _, sec := range e.sectors {
		r := sectors[sec]
		row = append(row, pct(r.Long), pct(r.Short), pct(r.Total))
	}
	row = append(row, pct(total.Long), pct(total.Short), pct(total.Total))

	return e.returns.write(func() []string {
		var h []string
		for _, sec := range e.sectors {
			h = append(h, sec+"-Long%", sec+"-Short%", sec+"-Total%")
		}
		return append(h, "Total-Long%", "Total-Short%", "Total%")
	}, row)
}

// Close closes all three streams. Calls after the first are no-ops.
func (e *Emitter) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return errors.Join(
		e.positions.wc.Close(),
		e.equity.wc.Close(),
		e.returns.wc.Close(),
	)
}

func (e *Emitter) header(h []string, a, b, totalA, totalB string) []string {
	for _, sec := range e.sectors {
		h = append(h, sec+a, sec+b)
	}
	return append(h, totalA, totalB)
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func pct(v float64) string { return fmt.Sprintf("%.1f", v) }
