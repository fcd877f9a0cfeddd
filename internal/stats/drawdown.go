package stats

import "tradesync/internal/journal"

// Drawdown is the largest peak-to-trough decline of an equity curve.
type Drawdown struct {
	MaxAmount float64 `json:"max_amount"`
	MaxPct    float64 `json:"max_pct"`
	Peak      float64 `json:"peak"`
	Trough    float64 `json:"trough"`
}

// MaxDrawdown walks the equity curve that starts at initialBalance and adds each
// trade's P&L in the order given. Percentages are relative to the running peak and
// are 0 while the peak is not positive.
func MaxDrawdown(initialBalance float64, trades []journal.Trade) Drawdown {
	var dd Drawdown
	equity := initialBalance
	peak := initialBalance
	for _, t := range trades {
		equity += t.PnL
		if equity > peak {
			peak = equity
			continue
		}
		amount := peak - equity
		if amount > dd.MaxAmount {
			dd.MaxAmount = amount
			dd.Peak = peak
			dd.Trough = equity
			if peak > 0 {
				dd.MaxPct = amount / peak * 100
			}
		}
	}
	return dd
}
