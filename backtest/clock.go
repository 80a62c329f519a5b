package backtest

import (
	"fmt"
	"time"
)

// Clock advances every group's feed in lockstep. Groups are kept in
// sector order.
type Clock struct {
	groups []*RunGroup
}

func (c Clock) SetCursor(t time.Time) {
	for _, g := range c.groups {
		g.Feed.SetCursor(t)
	}
}

// NextTick is the earliest unread bar time across all groups. It does not
// move any cursor.
func (c Clock) NextTick() (time.Time, bool) {
	var (
		next  time.Time
		found bool
	)
	for _, g := range c.groups {
		t, ok := g.Feed.NextBarsDate()
		if !ok {
			continue
		}
		if !found || t.Before(next) {
			next, found = t, true
		}
	}
	return next, found
}

// AdvanceAll emits every group's bars up to and including until. The first
// failure stops the pass.
func (c Clock) AdvanceAll(until time.Time) error {
	for _, g := range c.groups {
		if err := g.Feed.Start(until); err != nil {
			return fmt.Errorf("sector %s: %w", g.Sector, err)
		}
	}
	return nil
}
