package models

import (
	"gorm.io/datatypes"
	"time"
)

// Strategy represents a named trading approach. Its performance is never stored.
type Strategy struct {
	ID          string `gorm:"primaryKey;size:26"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	Rules       datatypes.JSON
	Tags        datatypes.JSON
	IsActive    bool `gorm:"default:true"`
	LastUsed    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WeeklyBias represents a per-pair weekly outlook.
type WeeklyBias struct {
	ID                    string         `gorm:"primaryKey;size:26"`
	WeekStart             datatypes.Date `gorm:"index:idx_week_pair"`
	WeekEnd               datatypes.Date
	Pair                  string `gorm:"index:idx_week_pair"`
	OverallBias           string `gorm:"size:16"`
	Confidence            int
	ExpectingScenarios    datatypes.JSON
	NotExpectingScenarios datatypes.JSON
	BiasPoints            datatypes.JSON
	Arguments             datatypes.JSON
	KeyLevels             datatypes.JSON
	HigherTimeframe       string `gorm:"type:text"`
	DailyBias             string `gorm:"type:text"`
	SessionPlan           string `gorm:"type:text"`
	TradePlan             string `gorm:"type:text"`
	Screenshots           datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the plural form the bias table has always had.
func (WeeklyBias) TableName() string {
	return "weekly_biases"
}

// Note represents a dated free-text journal note.
type Note struct {
	ID      string         `gorm:"primaryKey;size:26"`
	Date    datatypes.Date `gorm:"index"`
	Content string         `gorm:"type:text"`

	CreatedAt time.Time
}
