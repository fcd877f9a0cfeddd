package report

import (
	"encoding/csv"
	"fmt"
	"github.com/shopspring/decimal"
	"io"
	"sort"
	"tradesync/internal/journal"
)

var csvHeader = []string{"Date", "Instrument", "Direction", "Entry", "Exit", "Size", "P&L", "R-Multiple", "Strategy"}

// Fixed2 renders v rounded half away from zero to two decimals.
func Fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func plain(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// WriteCSV writes trades in the reports export layout. P&L and R-multiple are
// rounded to two decimals; prices and size are written as entered.
func WriteCSV(w io.Writer, trades []journal.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, t := range trades {
		row := []string{
			t.Day(),
			t.Instrument,
			string(t.Direction),
			plain(t.EntryPrice),
			plain(t.ExitPrice),
			plain(t.Size),
			Fixed2(t.PnL),
			Fixed2(t.RMultiple),
			t.StrategyTag,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for trade %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Facets are the distinct values offered by the report filter dropdowns.
type Facets struct {
	Accounts    []string `json:"accounts"`
	Instruments []string `json:"instruments"`
	Strategies  []string `json:"strategies"`
	Emotions    []string `json:"emotions"`
}

// CollectFacets gathers the sorted distinct non-empty filter values of trades.
func CollectFacets(trades []journal.Trade) Facets {
	accounts := map[string]struct{}{}
	instruments := map[string]struct{}{}
	strategies := map[string]struct{}{}
	emotions := map[string]struct{}{}
	for _, t := range trades {
		add(accounts, t.Account)
		add(instruments, t.Instrument)
		add(strategies, t.StrategyTag)
		add(emotions, t.PreEmotion)
	}
	return Facets{
		Accounts:    keys(accounts),
		Instruments: keys(instruments),
		Strategies:  keys(strategies),
		Emotions:    keys(emotions),
	}
}

func add(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// QuickCounts returns how many trades each quick filter would keep, given the rest
// of f.
func QuickCounts(trades []journal.Trade, f Filter) map[Quick]int {
	counts := make(map[Quick]int, 5)
	for _, q := range []Quick{QuickAll, QuickWinning, QuickLosing, QuickToday, QuickThisWeek} {
		f.Quick = q
		counts[q] = len(Apply(trades, f))
	}
	return counts
}
