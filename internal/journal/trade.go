// Package journal holds the canonical trade, account and strategy records of the
// trading journal together with the single P&L / R-multiple calculator.
//
// Everything in this package is pure: functions take snapshots by value and return
// new values. Storage, transport and presentation live elsewhere.
package journal

import "time"

// DateLayout is the calendar-date layout used for Trade.Date on the wire.
const DateLayout = "2006-01-02"

// Direction is the side of a position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// Screenshot is opaque metadata attached to a trade. The journal never reads the image.
type Screenshot struct {
	URL          string    `json:"url" yaml:"url"`
	Label        string    `json:"label,omitempty" yaml:"label,omitempty"`
	OriginalName string    `json:"original_name,omitempty" yaml:"original_name,omitempty"`
	Size         int64     `json:"size,omitempty" yaml:"size,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at,omitempty" yaml:"uploaded_at,omitempty"`
}

// Trade is one executed position in canonical form.
//
// PnL and RMultiple are derived; they are filled by Derive and must never be taken
// from storage or user input.
type Trade struct {
	ID         string     `json:"id"`
	Date       time.Time  `json:"date"`
	EntryTime  *time.Time `json:"entry_datetime,omitempty"`
	ExitTime   *time.Time `json:"exit_datetime,omitempty"`
	Instrument string     `json:"instrument"`
	Direction  Direction  `json:"direction"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price"`
	Size       float64    `json:"size"`
	Fees       float64    `json:"fees"`
	Account    string     `json:"account"`
	StopLoss   *float64   `json:"stop_loss,omitempty"`
	TakeProfit *float64   `json:"take_profit,omitempty"`
	RiskAmount float64    `json:"risk_amount"`

	StrategyTag    string       `json:"strategy_tag,omitempty"`
	TradeType      string       `json:"trade_type,omitempty"`
	Timeframe      string       `json:"timeframe,omitempty"`
	Rationale      string       `json:"rationale,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	PreEmotion     string       `json:"pre_emotion,omitempty"`
	PostReflection string       `json:"post_reflection,omitempty"`
	RulesFollowed  []string     `json:"rules_followed,omitempty"`
	Screenshots    []Screenshot `json:"screenshots,omitempty"`

	PnL       float64 `json:"pnl"`
	RMultiple float64 `json:"r_multiple"`
}

// Day returns the trade's calendar day formatted with DateLayout.
func (t Trade) Day() string {
	if t.Date.IsZero() {
		return ""
	}
	return t.Date.Format(DateLayout)
}

// IsWin reports whether the trade made money. Breakeven trades are not wins.
func (t Trade) IsWin() bool {
	return t.PnL > 0
}
