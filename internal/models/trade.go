package models

import (
	"gorm.io/datatypes"
	"time"
)

// Trade represents a logged trade in the database. PnL and RMultiple are a cache of
// the derived values and are recomputed whenever a row is loaded.
type Trade struct {
	ID         string         `gorm:"primaryKey;size:26"`
	Date       datatypes.Date `gorm:"index;not null"`
	EntryTime  *time.Time
	ExitTime   *time.Time
	Instrument string  `gorm:"index;not null"`
	Direction  string  `gorm:"size:8;not null"`
	EntryPrice float64 `gorm:"not null"`
	ExitPrice  float64 `gorm:"not null"`
	Size       float64 `gorm:"not null"`
	Fees       float64
	Account    string `gorm:"index"`
	StopLoss   *float64
	TakeProfit *float64
	RiskAmount float64

	StrategyTag    string `gorm:"index"`
	TradeType      string
	Timeframe      string
	Rationale      string `gorm:"type:text"`
	Tags           datatypes.JSON
	PreEmotion     string
	PostReflection string `gorm:"type:text"`
	RulesFollowed  datatypes.JSON
	Screenshots    datatypes.JSON

	PnL       float64 `gorm:"column:pnl"`
	RMultiple float64 `gorm:"column:r_multiple"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
