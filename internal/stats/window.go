package stats

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"tradesync/internal/journal"
)

// ErrUnknownTimeframe is returned by TimeframeStart for an unrecognized timeframe.
var ErrUnknownTimeframe = errors.New("unknown timeframe")

// TimeframeStart returns the first calendar day of the analytics timeframe ending at
// now. "all" and "" return the zero time.
func TimeframeStart(now time.Time, timeframe string) (time.Time, error) {
	today := journal.CalendarDay(now)
	switch timeframe {
	case "", "all":
		return time.Time{}, nil
	case "7d":
		return today.AddDate(0, 0, -7), nil
	case "30d":
		return today.AddDate(0, 0, -30), nil
	case "90d":
		return today.AddDate(0, 0, -90), nil
	case "1y":
		return today.AddDate(-1, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTimeframe, timeframe)
}

// Window keeps the trades dated on or after since. A zero since keeps everything.
func Window(trades []journal.Trade, since time.Time) []journal.Trade {
	if since.IsZero() {
		return append([]journal.Trade(nil), trades...)
	}
	cutoff := journal.CalendarDay(since)
	var out []journal.Trade
	for _, t := range trades {
		if !t.Date.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// Chronological returns trades sorted by date, then by ID. Trade IDs are stamped with
// the trade time, so this also orders trades within a day.
func Chronological(trades []journal.Trade) []journal.Trade {
	out := slices.Clone(trades)
	slices.SortStableFunc(out, func(a, b journal.Trade) int {
		return cmp.Or(a.Date.Compare(b.Date), strings.Compare(a.ID, b.ID))
	})
	return out
}
