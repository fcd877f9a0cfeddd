package stats

import (
	"sort"
	"time"
	"tradesync/internal/journal"
)

// DayStat is the result of one calendar day.
type DayStat struct {
	Date    time.Time `json:"-"`
	Day     string    `json:"date"`
	PnL     float64   `json:"total_pnl"`
	Trades  int       `json:"trade_count"`
	Wins    int       `json:"win_count"`
	WinRate float64   `json:"win_rate"`
}

// Daily groups trades by calendar day in chronological order. Undated trades are
// skipped.
func Daily(trades []journal.Trade) []DayStat {
	byDay := make(map[string]*DayStat)
	for _, t := range trades {
		if t.Date.IsZero() {
			continue
		}
		key := t.Day()
		d, ok := byDay[key]
		if !ok {
			d = &DayStat{Date: journal.CalendarDay(t.Date), Day: key}
			byDay[key] = d
		}
		d.PnL += t.PnL
		d.Trades++
		if t.IsWin() {
			d.Wins++
		}
	}

	days := make([]DayStat, 0, len(byDay))
	for _, d := range byDay {
		d.WinRate = float64(d.Wins) / float64(d.Trades) * 100
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days
}

// Calendar returns the days of the given month that have trades.
func Calendar(trades []journal.Trade, year int, month time.Month) []DayStat {
	var out []DayStat
	for _, d := range Daily(trades) {
		if d.Date.Year() == year && d.Date.Month() == month {
			out = append(out, d)
		}
	}
	return out
}

// DailySeries summarizes a chronological run of trading days.
type DailySeries struct {
	TradingDays     int     `json:"trading_days"`
	ProfitableDays  int     `json:"profitable_days"`
	AverageDailyPnL float64 `json:"average_daily_pnl"`
	BestDay         float64 `json:"best_day"`
	WorstDay        float64 `json:"worst_day"`
	MaxWinStreak    int     `json:"max_win_streak"`
	MaxLossStreak   int     `json:"max_loss_streak"`
	Volatility      float64 `json:"volatility"`
}

// DailySummary computes streaks and volatility over daily rather than per-trade P&L.
func DailySummary(days []DayStat) DailySeries {
	var s DailySeries
	if len(days) == 0 {
		return s
	}
	pnls := make([]float64, len(days))
	s.BestDay, s.WorstDay = days[0].PnL, days[0].PnL
	for i, d := range days {
		pnls[i] = d.PnL
		if d.PnL > 0 {
			s.ProfitableDays++
		}
		s.BestDay = max(s.BestDay, d.PnL)
		s.WorstDay = min(s.WorstDay, d.PnL)
	}
	s.TradingDays = len(days)
	s.AverageDailyPnL = Mean(pnls)
	s.MaxWinStreak, s.MaxLossStreak = Streaks(pnls)
	s.Volatility = StdDev(pnls)
	return s
}
