package stats

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
	"tradesync/internal/journal"
)

func sampleTrades() []journal.Trade {
	at := func(s string, hour int) *time.Time {
		ts := day(s).Add(time.Duration(hour) * time.Hour)
		return &ts
	}
	return []journal.Trade{
		{Date: day("2024-03-12"), EntryTime: at("2024-03-12", 14), Instrument: "EURUSD", Account: "FTMO", StrategyTag: "ICT", PnL: -40, RMultiple: -0.4},
		{Date: day("2024-03-11"), EntryTime: at("2024-03-11", 9), Instrument: "EURUSD", Account: "FTMO", StrategyTag: "ICT", PnL: 100, RMultiple: 1},
		{Date: day("2024-03-11"), EntryTime: at("2024-03-11", 10), Instrument: "XAUUSD", Account: "Apex", StrategyTag: "Breakout", PnL: -20, RMultiple: -2.5},
		{Date: day("2024-03-13"), Instrument: "GBPJPY", Account: "FTMO", PnL: 250, RMultiple: 3},
		{Instrument: "GBPJPY", Account: "FTMO", PnL: 5},
	}
}

func TestDaily(t *testing.T) {
	days := Daily(sampleTrades())

	require.Len(t, days, 3)
	assert.Equal(t, "2024-03-11", days[0].Day)
	assert.InDelta(t, 80, days[0].PnL, 1e-9)
	assert.Equal(t, 2, days[0].Trades)
	assert.Equal(t, 1, days[0].Wins)
	assert.InDelta(t, 50, days[0].WinRate, 1e-9)
	assert.Equal(t, "2024-03-12", days[1].Day)
	assert.Equal(t, "2024-03-13", days[2].Day)
}

func TestCalendar(t *testing.T) {
	assert.Len(t, Calendar(sampleTrades(), 2024, time.March), 3)
	assert.Empty(t, Calendar(sampleTrades(), 2024, time.April))
}

func TestDailySummary(t *testing.T) {
	s := DailySummary(Daily(sampleTrades()))

	assert.Equal(t, 3, s.TradingDays)
	assert.Equal(t, 2, s.ProfitableDays)
	assert.InDelta(t, 290.0/3, s.AverageDailyPnL, 1e-9)
	assert.Equal(t, 250.0, s.BestDay)
	assert.Equal(t, -40.0, s.WorstDay)
	assert.Equal(t, 1, s.MaxWinStreak)
	assert.Equal(t, 1, s.MaxLossStreak)

	assert.Equal(t, DailySeries{}, DailySummary(nil))
}

func TestMaxDrawdown(t *testing.T) {
	dd := MaxDrawdown(1000, pnlTrades(100, -200, 50, -100, 300))

	// peak 1100, trough 850
	assert.InDelta(t, 250, dd.MaxAmount, 1e-9)
	assert.InDelta(t, 250.0/1100*100, dd.MaxPct, 1e-9)
	assert.Equal(t, 1100.0, dd.Peak)
	assert.Equal(t, 850.0, dd.Trough)

	assert.Equal(t, Drawdown{}, MaxDrawdown(1000, pnlTrades(10, 20)))
	assert.Zero(t, MaxDrawdown(0, pnlTrades(-10)).MaxPct)
}

func TestGroupBy(t *testing.T) {
	groups := GroupBy(sampleTrades(), ByStrategy)

	require.Len(t, groups, 3)
	assert.Equal(t, Untagged, groups[0].Key)
	assert.InDelta(t, 255, groups[0].Summary.TotalPnL, 1e-9)
	assert.Equal(t, "ICT", groups[1].Key)
	assert.Equal(t, 2, groups[1].Summary.TotalTrades)
	assert.Equal(t, "Breakout", groups[2].Key)

	hours := GroupBy(sampleTrades(), ByHour)
	keys := make([]string, len(hours))
	for i, g := range hours {
		keys[i] = g.Key
	}
	assert.ElementsMatch(t, []string{"09:00", "10:00", "14:00", Untagged}, keys)
}

func TestRDistribution(t *testing.T) {
	buckets := RDistribution([]journal.Trade{
		{RMultiple: -3}, {RMultiple: -2}, {RMultiple: -0.5}, {RMultiple: 0},
		{RMultiple: 0.99}, {RMultiple: 2.5}, {RMultiple: 3}, {RMultiple: 7},
	})

	require.Len(t, buckets, 7)
	counts := make(map[string]int)
	for _, b := range buckets {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, map[string]int{
		"< -2R":      1,
		"-2R to -1R": 1,
		"-1R to 0R":  1,
		"0R to 1R":   2,
		"1R to 2R":   0,
		"2R to 3R":   1,
		">= 3R":      2,
	}, counts)
}

func TestTimeframeStart(t *testing.T) {
	now := time.Date(2024, 3, 15, 16, 45, 0, 0, time.UTC)

	start, err := TimeframeStart(now, "7d")
	require.NoError(t, err)
	assert.Equal(t, day("2024-03-08"), start)

	start, err = TimeframeStart(now, "1y")
	require.NoError(t, err)
	assert.Equal(t, day("2023-03-15"), start)

	start, err = TimeframeStart(now, "all")
	require.NoError(t, err)
	assert.True(t, start.IsZero())

	_, err = TimeframeStart(now, "2w")
	assert.ErrorIs(t, err, ErrUnknownTimeframe)
}

func TestWindow(t *testing.T) {
	assert.Len(t, Window(sampleTrades(), day("2024-03-12")), 2)
	assert.Len(t, Window(sampleTrades(), time.Time{}), 5)
}

func TestChronological(t *testing.T) {
	in := []journal.Trade{
		{ID: "03", Date: day("2024-03-11")},
		{ID: "09", Date: day("2024-03-12")},
		{ID: "01", Date: day("2024-03-11")},
		{ID: "00"},
	}
	out := Chronological(in)

	var got []string
	for _, tr := range out {
		got = append(got, tr.ID)
	}
	assert.Equal(t, []string{"00", "01", "03", "09"}, got)
	assert.Equal(t, "03", in[0].ID, "input is not modified")
}

func TestAccountMetrics(t *testing.T) {
	acct := journal.NewAccount("FTMO", "FTMO", 10000, journal.AccountRules{ProfitTarget: 1000})
	acct.TotalPnL = 12345

	got := AccountMetrics(acct, sampleTrades(), time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC))

	assert.InDelta(t, 315, got.TotalPnL, 1e-9)
	assert.InDelta(t, -40, got.DailyPnL, 1e-9)
	assert.Equal(t, 3, got.TradingDays)
	assert.InDelta(t, 0.4, got.Metrics.DailyDrawdownPct, 1e-9)
	assert.Zero(t, got.Metrics.TotalDrawdownPct)
	assert.InDelta(t, 31.5, got.Metrics.ProfitProgressPct, 1e-9)
	assert.InDelta(t, 10315, got.CurrentBalance(), 1e-9)
}

func TestStrategyPerformance(t *testing.T) {
	rep := StrategyPerformance(journal.Strategy{Name: "ICT"}, sampleTrades(), 10000, 1)

	assert.Equal(t, 2, rep.Performance.TotalTrades)
	assert.InDelta(t, 60, rep.Performance.TotalPnL, 1e-9)
	assert.Equal(t, 0, rep.Performance.ActiveStreak, "the newest ICT trade lost")
	assert.InDelta(t, 40.0/10100*100, rep.MaxDrawdownPct, 1e-9)
	require.Len(t, rep.RecentTrades, 1)
	assert.Equal(t, "2024-03-12", rep.RecentTrades[0].Day())
	assert.Equal(t, day("2024-03-12"), rep.Strategy.LastUsed)

	empty := StrategyPerformance(journal.Strategy{Name: "Unused"}, sampleTrades(), 10000, 5)
	assert.Zero(t, empty.Performance.TotalTrades)
	assert.NotNil(t, empty.RecentTrades)
}
