package report

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
	"tradesync/internal/journal"
)

func date(s string) time.Time {
	t, _ := time.Parse(journal.DateLayout, s)
	return t
}

// fixedNow is Wednesday 2024-03-13.
func fixedNow() time.Time {
	return time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)
}

func journalTrades() []journal.Trade {
	return []journal.Trade{
		{ID: "a", Date: date("2024-03-13"), Instrument: "EURUSD", Direction: journal.Long, Account: "FTMO", StrategyTag: "ICT Concepts", PreEmotion: "Calm", PnL: 120, RMultiple: 1.2, EntryPrice: 1.1, Size: 1, Rationale: "London sweep"},
		{ID: "b", Date: date("2024-03-11"), Instrument: "xauusd", Direction: journal.Short, Account: "Apex", StrategyTag: "Breakout", PreEmotion: "FOMO", PnL: -80, RMultiple: -0.8, EntryPrice: 2150, Size: 2, Tags: []string{"news", "NFP"}},
		{ID: "c", Date: date("2024-03-09"), Instrument: "GBPJPY", Direction: journal.Long, Account: "FTMO", StrategyTag: "ICT Concepts", PreEmotion: "Calm", PnL: 0, EntryPrice: 190, Size: 1, PostReflection: "Moved stop too early"},
		{ID: "d", Date: date("2024-03-10"), Instrument: "EURUSD", Direction: journal.Short, Account: "FTMO", StrategyTag: "Scalping", PnL: 120, RMultiple: 3.5, EntryPrice: 1.09, Size: 3, TradeType: "Swing"},
		{ID: "e", Date: date("2024-02-28"), Instrument: "NAS100", Direction: journal.Long, Account: "Apex", PnL: -300, RMultiple: -3, EntryPrice: 17800, Size: 1, Timeframe: "H4"},
	}
}

func ids(trades []journal.Trade) []string {
	out := make([]string, len(trades))
	for i, t := range trades {
		out[i] = t.ID
	}
	return out
}

func TestApply(t *testing.T) {
	testCases := []struct {
		name   string
		filter Filter
		expect []string
	}{
		{"No filter", Filter{}, []string{"a", "b", "c", "d", "e"}},
		{"Account", Filter{Account: "FTMO"}, []string{"a", "c", "d"}},
		{"Instrument and direction", Filter{Instrument: "EURUSD", Direction: "SHORT"}, []string{"d"}},
		{"Strategy", Filter{Strategy: "ICT Concepts"}, []string{"a", "c"}},
		{"Emotion", Filter{Emotion: "FOMO"}, []string{"b"}},
		{"Date range inclusive", Filter{DateFrom: date("2024-03-10"), DateTo: date("2024-03-11")}, []string{"b", "d"}},
		{"PnL range", Filter{MinPnL: Float(0), MaxPnL: Float(100)}, []string{"c"}},
		{"R range", Filter{MinR: Float(1)}, []string{"a", "d"}},
		{"Search instrument case folded", Filter{Search: "XAU"}, []string{"b"}},
		{"Search tags", Filter{Search: "nfp"}, []string{"b"}},
		{"Search reflection", Filter{Search: "stop too"}, []string{"c"}},
		{"Search timeframe", Filter{Search: "h4"}, []string{"e"}},
		{"Quick winning", Filter{Quick: QuickWinning}, []string{"a", "d"}},
		{"Quick losing includes breakeven", Filter{Quick: QuickLosing}, []string{"b", "c", "e"}},
		{"Quick today", Filter{Quick: QuickToday, Now: fixedNow}, []string{"a"}},
		{"Quick this week starts Sunday", Filter{Quick: QuickThisWeek, Now: fixedNow}, []string{"a", "b", "d"}},
		{"Combined with AND", Filter{Account: "FTMO", Quick: QuickWinning, Search: "london"}, []string{"a"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, ids(Apply(journalTrades(), tc.filter)))
		})
	}
}

func TestApply_QuickLosingMatchesAggregate(t *testing.T) {
	trades := journalTrades()
	losing := Apply(trades, Filter{Quick: QuickLosing})
	winning := Apply(trades, Filter{Quick: QuickWinning})

	assert.Len(t, losing, 3)
	assert.Equal(t, len(trades), len(losing)+len(winning), "every trade is either a win or a loss")
	for _, tr := range losing {
		assert.False(t, tr.IsWin(), tr.ID)
	}
}

func TestApply_ThisWeekExcludesLaterWeeks(t *testing.T) {
	trades := append(journalTrades(),
		journal.Trade{ID: "sat", Date: date("2024-03-16"), Instrument: "EURUSD", PnL: 10},
		journal.Trade{ID: "next", Date: date("2024-03-17"), Instrument: "EURUSD", PnL: 10},
	)

	got := ids(Apply(trades, Filter{Quick: QuickThisWeek, Now: fixedNow}))

	assert.Equal(t, []string{"a", "b", "d", "sat"}, got)
}

func TestOrder(t *testing.T) {
	testCases := []struct {
		name   string
		sort   Sort
		expect []string
	}{
		{"No sort keeps input order", Sort{}, []string{"a", "b", "c", "d", "e"}},
		{"Unknown field keeps input order", Sort{Field: "colour"}, []string{"a", "b", "c", "d", "e"}},
		{"Date ascending", Sort{Field: "date"}, []string{"e", "c", "d", "b", "a"}},
		{"PnL ascending keeps ties stable", Sort{Field: "pnl"}, []string{"e", "b", "c", "a", "d"}},
		{"PnL descending reverses ties too", Sort{Field: "pnl", Desc: true}, []string{"d", "a", "c", "b", "e"}},
		{"Instrument is case folded", Sort{Field: "instrument"}, []string{"a", "d", "c", "e", "b"}},
		{"Camel case alias", Sort{Field: "rMultiple", Desc: true}, []string{"d", "a", "c", "b", "e"}},
		{"Snake case alias", Sort{Field: "entry_price"}, []string{"d", "a", "c", "b", "e"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, ids(Order(journalTrades(), tc.sort)))
		})
	}
}

func TestParseQuick(t *testing.T) {
	for in, want := range map[string]Quick{"": QuickAll, "all": QuickAll, "losing": QuickLosing, "thisWeek": QuickThisWeek} {
		q, ok := ParseQuick(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, q, in)
	}
	_, ok := ParseQuick("thisweek")
	assert.False(t, ok)
}

func TestValidSortField(t *testing.T) {
	assert.True(t, ValidSortField(""))
	assert.True(t, ValidSortField("r_multiple"))
	assert.True(t, ValidSortField("strategy_tag"))
	assert.False(t, ValidSortField("colour"))
}

func TestFilterSortPage(t *testing.T) {
	trades := journalTrades()

	t.Run("Second page", func(t *testing.T) {
		res := FilterSortPage(trades, Filter{}, Sort{Field: "date"}, Page{Size: 2, Index: 2})
		assert.Equal(t, []string{"d", "b"}, ids(res.Items))
		assert.Equal(t, 5, res.TotalCount)
		assert.Equal(t, 3, res.TotalPages)
		assert.Equal(t, 2, res.Page)
	})

	t.Run("Last partial page", func(t *testing.T) {
		res := FilterSortPage(trades, Filter{}, Sort{Field: "date"}, Page{Size: 2, Index: 3})
		assert.Equal(t, []string{"a"}, ids(res.Items))
	})

	t.Run("Past the end", func(t *testing.T) {
		res := FilterSortPage(trades, Filter{}, Sort{}, Page{Size: 2, Index: 9})
		assert.Empty(t, res.Items)
		assert.NotNil(t, res.Items)
		assert.Equal(t, 5, res.TotalCount)
	})

	t.Run("Index below one is the first page", func(t *testing.T) {
		res := FilterSortPage(trades, Filter{}, Sort{}, Page{Size: 2, Index: 0})
		assert.Equal(t, []string{"a", "b"}, ids(res.Items))
		assert.Equal(t, 1, res.Page)
	})

	t.Run("No page size returns everything", func(t *testing.T) {
		res := FilterSortPage(trades, Filter{Account: "Apex"}, Sort{}, Page{})
		assert.Equal(t, []string{"b", "e"}, ids(res.Items))
		assert.Equal(t, 1, res.TotalPages)
	})

	t.Run("Empty input", func(t *testing.T) {
		res := FilterSortPage(nil, Filter{}, Sort{Field: "pnl"}, Page{Size: DefaultPageSize})
		assert.Zero(t, res.TotalCount)
		assert.Zero(t, res.TotalPages)
		assert.NotNil(t, res.Items)
	})

	t.Run("Input is not modified", func(t *testing.T) {
		FilterSortPage(trades, Filter{}, Sort{Field: "pnl", Desc: true}, Page{})
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(trades))
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	trades := []journal.Trade{
		{Date: date("2024-03-11"), Instrument: "EURUSD", Direction: journal.Long, EntryPrice: 1.1, ExitPrice: 1.105, Size: 100000, PnL: 494.999999, RMultiple: 2.475, StrategyTag: "ICT, London"},
	}

	require.NoError(t, WriteCSV(&buf, trades))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Instrument,Direction,Entry,Exit,Size,P&L,R-Multiple,Strategy", lines[0])
	assert.Equal(t, `2024-03-11,EURUSD,long,1.1,1.105,100000,495.00,2.48,"ICT, London"`, lines[1])
}

func TestFixed2(t *testing.T) {
	assert.Equal(t, "-1.24", Fixed2(-1.235))
	assert.Equal(t, "0.00", Fixed2(0))
	assert.Equal(t, "3.00", Fixed2(3))
}

func TestCollectFacets(t *testing.T) {
	f := CollectFacets(journalTrades())

	assert.Equal(t, []string{"Apex", "FTMO"}, f.Accounts)
	assert.Equal(t, []string{"EURUSD", "GBPJPY", "NAS100", "xauusd"}, f.Instruments)
	assert.Equal(t, []string{"Breakout", "ICT Concepts", "Scalping"}, f.Strategies)
	assert.Equal(t, []string{"Calm", "FOMO"}, f.Emotions)
}

func TestQuickCounts(t *testing.T) {
	counts := QuickCounts(journalTrades(), Filter{Account: "FTMO", Now: fixedNow})

	assert.Equal(t, 3, counts[QuickAll])
	assert.Equal(t, 2, counts[QuickWinning])
	assert.Equal(t, 1, counts[QuickLosing], "the breakeven GBPJPY trade")
	assert.Equal(t, 1, counts[QuickToday])
	assert.Equal(t, 2, counts[QuickThisWeek])
}
