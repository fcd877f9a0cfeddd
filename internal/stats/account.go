package stats

import (
	"time"
	"tradesync/internal/journal"
)

// BelongsTo reports whether t is attributed to acct, by ID or by name.
func BelongsTo(t journal.Trade, acct journal.Account) bool {
	return t.Account != "" && (t.Account == acct.ID || t.Account == acct.Name)
}

// AccountMetrics returns acct with its P&L, trading days and drawdown figures
// recomputed from the trades attributed to it. day selects the daily figures.
func AccountMetrics(acct journal.Account, trades []journal.Trade, day time.Time) journal.Account {
	today := journal.CalendarDay(day).Format(journal.DateLayout)
	days := make(map[string]struct{})

	acct.TotalPnL, acct.DailyPnL = 0, 0
	for _, t := range trades {
		if !BelongsTo(t, acct) {
			continue
		}
		acct.TotalPnL += t.PnL
		if t.Day() == today {
			acct.DailyPnL += t.PnL
		}
		if !t.Date.IsZero() {
			days[t.Day()] = struct{}{}
		}
	}
	acct.TradingDays = len(days)

	acct.Metrics = journal.AccountMetrics{}
	if acct.InitialBalance > 0 {
		acct.Metrics.DailyDrawdownPct = max(0, -acct.DailyPnL) / acct.InitialBalance * 100
		acct.Metrics.TotalDrawdownPct = max(0, -acct.TotalPnL) / acct.InitialBalance * 100
	}
	if acct.Rules.ProfitTarget > 0 {
		acct.Metrics.ProfitProgressPct = acct.TotalPnL / acct.Rules.ProfitTarget * 100
	}
	return acct
}

// StrategyReport is the derived performance view of a strategy.
type StrategyReport struct {
	Strategy       journal.Strategy `json:"strategy"`
	Performance    Summary          `json:"performance"`
	MaxDrawdownPct float64          `json:"max_drawdown_pct"`
	Rating         string           `json:"risk_rating,omitempty"`
	RecentTrades   []journal.Trade  `json:"recent_trades"`
}

// StrategyPerformance derives a strategy's figures from the trades tagged with its
// name. Drawdown is measured on an equity curve starting at capital, in date order.
// RecentTrades holds at most recent trades, newest first. Rating is left to the
// caller.
func StrategyPerformance(s journal.Strategy, trades []journal.Trade, capital float64, recent int) StrategyReport {
	var tagged []journal.Trade
	for _, t := range trades {
		if t.StrategyTag == s.Name {
			tagged = append(tagged, t)
		}
	}
	tagged = Chronological(tagged)

	rep := StrategyReport{
		Strategy:       s,
		Performance:    Aggregate(tagged),
		MaxDrawdownPct: MaxDrawdown(capital, tagged).MaxPct,
		RecentTrades:   []journal.Trade{},
	}
	if n := len(tagged); n > 0 {
		if !tagged[n-1].Date.IsZero() && tagged[n-1].Date.After(rep.Strategy.LastUsed) {
			rep.Strategy.LastUsed = tagged[n-1].Date
		}
	}
	for i := len(tagged) - 1; i >= 0 && len(rep.RecentTrades) < recent; i-- {
		rep.RecentTrades = append(rep.RecentTrades, tagged[i])
	}
	return rep
}
