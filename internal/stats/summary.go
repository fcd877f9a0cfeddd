// Package stats aggregates trade snapshots into the figures shown on the dashboard,
// analytics and calendar views.
//
// Functions consume trades in the order given. Only streak figures depend on that
// order; callers that want chronological streaks sort first.
package stats

import (
	"encoding/json"
	"math"
	"tradesync/internal/journal"
)

// Summary is the aggregate of a trade collection. The zero value is the summary of
// an empty collection.
type Summary struct {
	TotalTrades      int     `json:"total_trades"`
	TotalPnL         float64 `json:"total_pnl"`
	WinningTrades    int     `json:"winning_trades"`
	LosingTrades     int     `json:"losing_trades"`
	WinRate          float64 `json:"win_rate"`
	AverageRMultiple float64 `json:"average_r_multiple"`
	BestTrade        float64 `json:"best_trade"`
	WorstTrade       float64 `json:"worst_trade"`
	ProfitFactor     float64 `json:"profit_factor"`
	MaxWinStreak     int     `json:"max_win_streak"`
	MaxLossStreak    int     `json:"max_loss_streak"`
	Volatility       float64 `json:"volatility"`

	GrossProfit  float64 `json:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss"`
	AverageWin   float64 `json:"average_win"`
	AverageLoss  float64 `json:"average_loss"`
	Expectancy   float64 `json:"expectancy"`
	ActiveStreak int     `json:"active_streak"`
}

// MarshalJSON writes an unbounded profit factor as the string "Infinity", which
// encoding/json cannot represent as a number.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		ProfitFactor any `json:"profit_factor"`
	}{plain(s), Number(s.ProfitFactor)})
}

// Number returns f unchanged when it is finite and its JavaScript spelling otherwise.
func Number(f float64) any {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return nil
	}
	return f
}

// Aggregate summarizes trades given oldest first (see Chronological). Breakeven
// trades count as losses. Streaks and ActiveStreak follow the order of trades; every
// other figure is order independent.
func Aggregate(trades []journal.Trade) Summary {
	var s Summary
	if len(trades) == 0 {
		return s
	}

	var sumR, grossLossSigned float64
	pnls := make([]float64, len(trades))
	s.BestTrade = math.Inf(-1)
	s.WorstTrade = math.Inf(1)

	for i, t := range trades {
		pnls[i] = t.PnL
		s.TotalPnL += t.PnL
		sumR += t.RMultiple
		s.BestTrade = math.Max(s.BestTrade, t.PnL)
		s.WorstTrade = math.Min(s.WorstTrade, t.PnL)

		if t.IsWin() {
			s.WinningTrades++
			s.GrossProfit += t.PnL
		} else {
			s.LosingTrades++
			grossLossSigned += t.PnL
		}
	}

	s.TotalTrades = len(trades)
	s.GrossLoss = math.Abs(grossLossSigned)
	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	s.AverageRMultiple = sumR / float64(s.TotalTrades)
	s.Expectancy = s.TotalPnL / float64(s.TotalTrades)
	s.ProfitFactor = ProfitFactor(s.GrossProfit, s.GrossLoss)
	if s.WinningTrades > 0 {
		s.AverageWin = s.GrossProfit / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AverageLoss = grossLossSigned / float64(s.LosingTrades)
	}

	s.MaxWinStreak, s.MaxLossStreak = Streaks(pnls)
	s.ActiveStreak = trailingWins(pnls)
	s.Volatility = StdDev(pnls)

	return s
}

// ProfitFactor is gross profit over gross loss. Without losses it is +Inf when there
// is any profit and 0 otherwise.
func ProfitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss > 0 {
		return grossProfit / grossLoss
	}
	if grossProfit > 0 {
		return math.Inf(1)
	}
	return 0
}

// Streaks returns the longest runs of strictly positive and of non-positive values.
func Streaks(pnls []float64) (win, loss int) {
	var curWin, curLoss int
	for _, p := range pnls {
		if p > 0 {
			curWin++
			curLoss = 0
		} else {
			curLoss++
			curWin = 0
		}
		win = max(win, curWin)
		loss = max(loss, curLoss)
	}
	return win, loss
}

// trailingWins is the run of winners ending at the most recent trade.
func trailingWins(pnls []float64) int {
	n := 0
	for i := len(pnls) - 1; i >= 0 && pnls[i] > 0; i-- {
		n++
	}
	return n
}

// StdDev is the population standard deviation of values around their mean.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// Mean is the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
