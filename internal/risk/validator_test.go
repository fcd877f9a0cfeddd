package risk

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
	"time"
	"tradesync/internal/journal"
)

func ftmo() *journal.Account {
	acct := journal.NewAccount("FTMO 100k", "FTMO", 100000, journal.AccountRules{MaxDailyDrawdownPct: 5})
	return &acct
}

func TestValidate(t *testing.T) {
	entry := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)
	before := entry.Add(-time.Minute)
	after := entry.Add(time.Hour)

	base := journal.Trade{Direction: journal.Long, EntryPrice: 1.1, ExitPrice: 1.101, Size: 10000}

	testCases := []struct {
		name           string
		mutate         func(*journal.Trade, *journal.Account)
		expectStatus   Status
		expectErrors   []string
		expectWarnings int
	}{
		{
			name:         "Within limits",
			mutate:       func(tr *journal.Trade, _ *journal.Account) { tr.RiskAmount = 500 },
			expectStatus: Safe,
		},
		{
			name:         "Risk above two percent",
			mutate:       func(tr *journal.Trade, _ *journal.Account) { tr.RiskAmount = 2500 },
			expectStatus: Danger,
			expectErrors: []string{"risk"},
		},
		{
			name:           "Risk approaching two percent",
			mutate:         func(tr *journal.Trade, _ *journal.Account) { tr.RiskAmount = 1600 },
			expectStatus:   Warning,
			expectWarnings: 1,
		},
		{
			name: "Daily budget nearly used",
			mutate: func(tr *journal.Trade, a *journal.Account) {
				tr.RiskAmount = 1000
				a.DailyPnL = -3500
			},
			// 3500 + 1000 > 0.8 * 5000
			expectStatus:   Warning,
			expectWarnings: 1,
		},
		{
			name: "Daily profit does not offset risk",
			mutate: func(tr *journal.Trade, a *journal.Account) {
				tr.RiskAmount = 1000
				a.DailyPnL = 2000
			},
			expectStatus: Safe,
		},
		{
			name: "Deep loser is flagged but not escalated",
			mutate: func(tr *journal.Trade, _ *journal.Account) {
				tr.RiskAmount = 10
				tr.ExitPrice = 1.0960
			},
			// pnl = -40, r = -4
			expectStatus:   Safe,
			expectWarnings: 1,
		},
		{
			name: "Exit before entry",
			mutate: func(tr *journal.Trade, _ *journal.Account) {
				tr.EntryTime = &entry
				tr.ExitTime = &before
			},
			expectStatus: Safe,
			expectErrors: []string{"timing"},
		},
		{
			name: "Exit equal to entry",
			mutate: func(tr *journal.Trade, _ *journal.Account) {
				tr.EntryTime = &entry
				tr.ExitTime = &entry
			},
			expectStatus: Safe,
			expectErrors: []string{"timing"},
		},
		{
			name: "Exit after entry",
			mutate: func(tr *journal.Trade, _ *journal.Account) {
				tr.EntryTime = &entry
				tr.ExitTime = &after
			},
			expectStatus: Safe,
		},
		{
			name: "Every rule fires",
			mutate: func(tr *journal.Trade, a *journal.Account) {
				tr.RiskAmount = 3000
				tr.ExitPrice = 0.1
				a.DailyPnL = -2000
				tr.EntryTime = &entry
				tr.ExitTime = &before
			},
			expectStatus:   Danger,
			expectErrors:   []string{"risk", "timing"},
			expectWarnings: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := base
			acct := ftmo()
			tc.mutate(&tr, acct)

			res := Validate(tr, acct)

			assert.Equal(t, tc.expectStatus, res.Status)
			assert.Len(t, res.Errors, len(tc.expectErrors))
			for _, field := range tc.expectErrors {
				assert.Contains(t, res.Errors, field)
			}
			assert.Len(t, res.Warnings, tc.expectWarnings)
			assert.Equal(t, len(tc.expectErrors) > 0, res.Blocked())
		})
	}
}

func TestValidate_ExampleRiskPercent(t *testing.T) {
	res := Validate(journal.Trade{Direction: journal.Long, RiskAmount: 2500}, ftmo())

	assert.InDelta(t, 2.5, res.RiskPercent, 1e-9)
	assert.Equal(t, Danger, res.Status)
	assert.Equal(t, "Risk exceeds 2% of account balance", res.Errors["risk"])
}

func TestValidate_NoAccount(t *testing.T) {
	res := Validate(journal.Trade{Direction: journal.Long, RiskAmount: 99999}, nil)

	assert.Equal(t, Safe, res.Status)
	assert.Zero(t, res.RiskPercent)
	assert.False(t, res.Blocked())
}

func TestNewValidator_CustomThresholds(t *testing.T) {
	v := NewValidator(Thresholds{MaxRiskPct: 1, WarnRiskPct: 0.5})

	assert.Equal(t, 0.8, v.Thresholds().DailyBudgetFraction)
	assert.Equal(t, -3.0, v.Thresholds().MinRMultiple)

	res := v.Validate(journal.Trade{Direction: journal.Long, RiskAmount: 1500}, ftmo())
	assert.Equal(t, Danger, res.Status)
	assert.Equal(t, "Risk exceeds 1% of account balance", res.Errors["risk"])
}

func TestResult_JSON(t *testing.T) {
	res := Validate(journal.Trade{Direction: journal.Long, RiskAmount: 1600}, ftmo())

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"risk_status":"warning"`)

	var back Result
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Warning, back.Status)
}

func TestAccountStatus(t *testing.T) {
	assert.Equal(t, Safe, AccountStatus(journal.AccountMetrics{DailyDrawdownPct: 3, TotalDrawdownPct: 6}))
	assert.Equal(t, Warning, AccountStatus(journal.AccountMetrics{DailyDrawdownPct: 3.5}))
	assert.Equal(t, Warning, AccountStatus(journal.AccountMetrics{TotalDrawdownPct: 7}))
	assert.Equal(t, Danger, AccountStatus(journal.AccountMetrics{DailyDrawdownPct: 4.1, TotalDrawdownPct: 1}))
	assert.Equal(t, Danger, AccountStatus(journal.AccountMetrics{TotalDrawdownPct: 9}))
}

func TestStrategyRating(t *testing.T) {
	testCases := []struct {
		name    string
		winRate float64
		pf      float64
		dd      float64
		expect  Rating
	}{
		{"Strong", 72, 2.4, 2, LowRisk},
		{"Solid", 55, 1.6, 4, MediumRisk},
		{"Weak", 40, 0.8, 12, HighRisk},
		{"Infinite profit factor", 100, math.Inf(1), 0, LowRisk},
		{"No trades", 0, 0, 0, HighRisk},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, StrategyRating(tc.winRate, tc.pf, tc.dd))
		})
	}
}
