package journal

import "math"

// Metrics are the per-trade derived values.
type Metrics struct {
	PnL       float64 `json:"pnl"`
	RMultiple float64 `json:"r_multiple"`
}

// ComputeMetrics is the one P&L / R-multiple formula of the journal:
//
//	move      = long ? exit - entry : entry - exit
//	pnl       = move*size - fees
//	rMultiple = risk > 0 ? pnl/risk : 0
//
// It never divides by zero and never returns NaN for finite inputs.
func ComputeMetrics(t Trade) Metrics {
	pnl := PnL(t.Direction, t.EntryPrice, t.ExitPrice, t.Size, t.Fees)
	return Metrics{
		PnL:       pnl,
		RMultiple: RMultiple(pnl, t.RiskAmount),
	}
}

// PnL returns the realized profit or loss of a closed position.
func PnL(dir Direction, entry, exit, size, fees float64) float64 {
	var move float64
	if dir == Long {
		move = exit - entry
	} else {
		move = entry - exit
	}
	return move*size - fees
}

// RMultiple expresses pnl as a multiple of the amount risked. Zero risk yields 0.
func RMultiple(pnl, risk float64) float64 {
	if risk > 0 {
		return pnl / risk
	}
	return 0
}

// Derive returns a copy of t with PnL and RMultiple recomputed from its primary fields.
func Derive(t Trade) Trade {
	m := ComputeMetrics(t)
	t.PnL = m.PnL
	t.RMultiple = m.RMultiple
	return t
}

// DeriveAll applies Derive to every trade and returns a new slice.
func DeriveAll(trades []Trade) []Trade {
	out := make([]Trade, len(trades))
	for i, t := range trades {
		out[i] = Derive(t)
	}
	return out
}

// RiskPercent is the risk amount as a percentage of account capital.
func RiskPercent(riskAmount, capital float64) float64 {
	if riskAmount <= 0 || capital <= 0 {
		return 0
	}
	return riskAmount / capital * 100
}

// RewardRiskRatio is |pnl| / risk, or 0 when nothing was risked.
func RewardRiskRatio(pnl, risk float64) float64 {
	if risk <= 0 {
		return 0
	}
	return math.Abs(pnl) / risk
}

// Position is a suggested size for a planned trade.
type Position struct {
	Size       float64 `json:"size"`
	RiskAmount float64 `json:"risk_amount"`
}

// OptimalPosition sizes a trade so that hitting the stop loses riskPct of capital.
// A zero stop distance yields a zero size.
func OptimalPosition(entry, stop, capital, riskPct float64) Position {
	riskAmount := capital * riskPct / 100
	distance := math.Abs(entry - stop)
	if distance == 0 || riskAmount <= 0 {
		return Position{RiskAmount: math.Max(riskAmount, 0)}
	}
	return Position{Size: riskAmount / distance, RiskAmount: riskAmount}
}

// LivePnL marks an open trade to the given price using the same formula as a close.
func LivePnL(t Trade, price float64) float64 {
	return PnL(t.Direction, t.EntryPrice, price, t.Size, t.Fees)
}
