package risk

import (
	"math"
	"tradesync/internal/journal"
)

// Drawdown levels at which an account is flagged.
const (
	dailyDangerPct  = 4.0
	totalDangerPct  = 8.0
	dailyWarningPct = 3.0
	totalWarningPct = 6.0
)

// AccountStatus grades an account by how much of its drawdown allowance is used.
func AccountStatus(m journal.AccountMetrics) Status {
	switch {
	case m.DailyDrawdownPct > dailyDangerPct || m.TotalDrawdownPct > totalDangerPct:
		return Danger
	case m.DailyDrawdownPct > dailyWarningPct || m.TotalDrawdownPct > totalWarningPct:
		return Warning
	default:
		return Safe
	}
}

// Rating is the coarse risk grade of a strategy.
type Rating string

const (
	LowRisk    Rating = "Low Risk"
	MediumRisk Rating = "Medium Risk"
	HighRisk   Rating = "High Risk"
)

// StrategyRating scores win rate, profit factor and max drawdown from 1 to 3 each and
// maps the total onto a Rating. A strategy without trades is rated HighRisk.
func StrategyRating(winRate, profitFactor, maxDrawdownPct float64) Rating {
	score := 0

	switch {
	case winRate >= 70:
		score += 3
	case winRate >= 50:
		score += 2
	default:
		score++
	}

	switch {
	case profitFactor >= 2 || math.IsInf(profitFactor, 1):
		score += 3
	case profitFactor >= 1.5:
		score += 2
	default:
		score++
	}

	switch {
	case maxDrawdownPct <= 3:
		score += 3
	case maxDrawdownPct <= 5:
		score += 2
	default:
		score++
	}

	switch {
	case score >= 8:
		return LowRisk
	case score >= 6:
		return MediumRisk
	default:
		return HighRisk
	}
}
