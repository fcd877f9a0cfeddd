package models

import "time"

// Account represents a prop-firm account. Rules are flattened into columns; P&L
// figures are recomputed from trades.
type Account struct {
	ID             string `gorm:"primaryKey;size:26"`
	Name           string `gorm:"uniqueIndex;not null"`
	PropFirm       string
	Phase          string
	Status         string
	InitialBalance float64 `gorm:"not null"`
	DailyPnL       float64 `gorm:"column:daily_pnl"`
	TotalPnL       float64 `gorm:"column:total_pnl"`
	TradingDays    int

	MinTradingDays        int
	ProfitTarget          float64
	MaxDailyDrawdownPct   float64
	MaxTotalDrawdownPct   float64
	WeekendHoldingAllowed bool
	NewsTradingAllowed    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
