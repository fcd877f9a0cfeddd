package journal

import "time"

// Default account parameters used when a prop-firm account is created without them.
const (
	DefaultCapital             = 100000.0
	DefaultMaxDailyDrawdownPct = 5.0
	DefaultMaxTotalDrawdownPct = 10.0
)

// AccountRules is the constraint set a prop firm attaches to an account. Rules are
// fixed at creation.
type AccountRules struct {
	MinTradingDays        int     `json:"min_trading_days" yaml:"min_trading_days"`
	ProfitTarget          float64 `json:"profit_target" yaml:"profit_target"`
	MaxDailyDrawdownPct   float64 `json:"max_daily_drawdown_pct" yaml:"max_daily_drawdown_pct"`
	MaxTotalDrawdownPct   float64 `json:"max_total_drawdown_pct" yaml:"max_total_drawdown_pct"`
	WeekendHoldingAllowed bool    `json:"weekend_holding_allowed" yaml:"weekend_holding_allowed"`
	NewsTradingAllowed    bool    `json:"news_trading_allowed" yaml:"news_trading_allowed"`
}

// AccountMetrics are recomputed whenever trades are attributed to the account.
// Percentages are not clamped here.
type AccountMetrics struct {
	DailyDrawdownPct  float64 `json:"daily_drawdown_pct"`
	TotalDrawdownPct  float64 `json:"total_drawdown_pct"`
	ProfitProgressPct float64 `json:"profit_progress_pct"`
}

// Account is one prop-firm trading account.
type Account struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	PropFirm       string         `json:"prop_firm"`
	Phase          string         `json:"phase"`
	Status         string         `json:"status"`
	InitialBalance float64        `json:"initial_balance"`
	DailyPnL       float64        `json:"daily_pnl"`
	TotalPnL       float64        `json:"total_pnl"`
	TradingDays    int            `json:"trading_days"`
	Rules          AccountRules   `json:"rules"`
	Metrics        AccountMetrics `json:"metrics"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CurrentBalance is always InitialBalance + TotalPnL.
func (a Account) CurrentBalance() float64 {
	return a.InitialBalance + a.TotalPnL
}

// NewAccount returns an account with the journal defaults applied to any zero-valued
// capital or drawdown limit.
func NewAccount(name, propFirm string, capital float64, rules AccountRules) Account {
	if capital <= 0 {
		capital = DefaultCapital
	}
	if rules.MaxDailyDrawdownPct <= 0 {
		rules.MaxDailyDrawdownPct = DefaultMaxDailyDrawdownPct
	}
	if rules.MaxTotalDrawdownPct <= 0 {
		rules.MaxTotalDrawdownPct = DefaultMaxTotalDrawdownPct
	}
	return Account{
		Name:           name,
		PropFirm:       propFirm,
		Phase:          "Active",
		Status:         "active",
		InitialBalance: capital,
		Rules:          rules,
	}
}

// Strategy is a named trading approach with an ordered rule checklist.
type Strategy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Rules       []string  `json:"rules"`
	Tags        []string  `json:"tags,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	LastUsed    time.Time `json:"last_used,omitempty"`
}

// BiasPoint is a single supporting observation on a weekly bias.
type BiasPoint struct {
	Type  string `json:"bias_type" yaml:"bias_type"`
	Point string `json:"point" yaml:"point"`
}

// BiasArgument is a directional argument on a weekly bias.
type BiasArgument struct {
	Direction string `json:"direction" yaml:"direction"`
	Reason    string `json:"reason" yaml:"reason"`
}

// WeeklyBias is a per-pair, per-week outlook note. It is stored, never computed upon.
type WeeklyBias struct {
	ID                    string         `json:"id"`
	WeekStart             time.Time      `json:"week_start_date"`
	WeekEnd               time.Time      `json:"week_end_date"`
	Pair                  string         `json:"pair"`
	OverallBias           string         `json:"overall_bias"`
	Confidence            int            `json:"confidence"`
	ExpectingScenarios    []string       `json:"expecting_scenarios,omitempty"`
	NotExpectingScenarios []string       `json:"not_expecting_scenarios,omitempty"`
	BiasPoints            []BiasPoint    `json:"bias_points,omitempty"`
	Arguments             []BiasArgument `json:"arguments,omitempty"`
	KeyLevels             []string       `json:"key_levels,omitempty"`
	HigherTimeframe       string         `json:"higher_timeframe,omitempty"`
	DailyBias             string         `json:"daily_bias,omitempty"`
	SessionPlan           string         `json:"session_plan,omitempty"`
	TradePlan             string         `json:"trade_plan,omitempty"`
	Screenshots           []Screenshot   `json:"screenshots,omitempty"`
}

// Note is a dated free-text journal note.
type Note struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}
