// Package report selects, orders and pages trades for the reports table and exports
// them.
package report

import (
	"strings"
	"time"
	"tradesync/internal/journal"
)

// Quick is a named shortcut filter.
type Quick string

const (
	QuickAll      Quick = "all"
	QuickWinning  Quick = "winning"
	QuickLosing   Quick = "losing"
	QuickToday    Quick = "today"
	QuickThisWeek Quick = "thisWeek"
)

// ParseQuick maps a query value onto a Quick shortcut. Empty means QuickAll.
func ParseQuick(s string) (Quick, bool) {
	switch q := Quick(s); q {
	case "":
		return QuickAll, true
	case QuickAll, QuickWinning, QuickLosing, QuickToday, QuickThisWeek:
		return q, true
	}
	return "", false
}

// Filter selects trades. Zero fields match everything; all set fields must match.
type Filter struct {
	Account    string
	Instrument string
	Strategy   string
	Direction  journal.Direction
	Emotion    string

	DateFrom time.Time // inclusive
	DateTo   time.Time // inclusive

	MinPnL *float64
	MaxPnL *float64
	MinR   *float64
	MaxR   *float64

	// Search is matched case-insensitively against the trade's text fields.
	Search string
	Quick  Quick

	// Now is the clock used by the today and thisWeek shortcuts. Nil means time.Now.
	Now func() time.Time
}

// Float returns a pointer to v, for the range fields of Filter.
func Float(v float64) *float64 {
	return &v
}

// matcher is a Filter compiled against a fixed clock.
type matcher struct {
	f         Filter
	search    string
	today     time.Time
	weekStart time.Time
}

func (f Filter) compile() matcher {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	today := journal.CalendarDay(now())
	return matcher{
		f:         f,
		search:    strings.ToLower(strings.TrimSpace(f.Search)),
		today:     today,
		weekStart: today.AddDate(0, 0, -int(today.Weekday())),
	}
}

// Match reports whether t passes every set criterion.
func (f Filter) Match(t journal.Trade) bool {
	return f.compile().match(t)
}

func (m matcher) match(t journal.Trade) bool {
	f := m.f
	if f.Account != "" && t.Account != f.Account {
		return false
	}
	if f.Instrument != "" && t.Instrument != f.Instrument {
		return false
	}
	if f.Strategy != "" && t.StrategyTag != f.Strategy {
		return false
	}
	if f.Direction != "" && t.Direction != journal.ParseDirection(string(f.Direction)) {
		return false
	}
	if f.Emotion != "" && t.PreEmotion != f.Emotion {
		return false
	}

	if !f.DateFrom.IsZero() && t.Date.Before(journal.CalendarDay(f.DateFrom)) {
		return false
	}
	if !f.DateTo.IsZero() && t.Date.After(journal.CalendarDay(f.DateTo)) {
		return false
	}

	if f.MinPnL != nil && t.PnL < *f.MinPnL {
		return false
	}
	if f.MaxPnL != nil && t.PnL > *f.MaxPnL {
		return false
	}
	if f.MinR != nil && t.RMultiple < *f.MinR {
		return false
	}
	if f.MaxR != nil && t.RMultiple > *f.MaxR {
		return false
	}

	if m.search != "" && !strings.Contains(searchText(t), m.search) {
		return false
	}

	switch f.Quick {
	case QuickWinning:
		return t.PnL > 0
	case QuickLosing:
		return !t.IsWin()
	case QuickToday:
		return t.Date.Equal(m.today)
	case QuickThisWeek:
		return !t.Date.Before(m.weekStart) && t.Date.Before(m.weekStart.AddDate(0, 0, 7))
	}
	return true
}

// searchText is the lower-cased haystack searched by Filter.Search.
func searchText(t journal.Trade) string {
	parts := []string{
		t.Instrument,
		t.StrategyTag,
		t.Rationale,
		strings.Join(t.Tags, " "),
		t.PreEmotion,
		t.PostReflection,
		t.TradeType,
		t.Timeframe,
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Apply returns the trades matching f in their input order.
func Apply(trades []journal.Trade, f Filter) []journal.Trade {
	m := f.compile()
	out := make([]journal.Trade, 0, len(trades))
	for _, t := range trades {
		if m.match(t) {
			out = append(out, t)
		}
	}
	return out
}
