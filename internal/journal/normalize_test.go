package journal

import (
	"encoding/json"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

func TestNormalize_FormStrings(t *testing.T) {
	raw := RawTrade{
		"date":           "2024-03-11",
		"entry_datetime": "2024-03-11T09:30",
		"exit_datetime":  "2024-03-11T11:15",
		"instrument":     "EURUSD",
		"direction":      " LONG ",
		"entry_price":    "1.1000",
		"exit_price":     "1.1050",
		"size":           "100000",
		"fees":           "5",
		"account":        "FTMO 100k",
		"stop_loss":      "1.0950",
		"take_profit":    "",
		"risk_amount":    "200",
		"tags":           "london, breakout,, ",
		"pnl":            "123456",
	}

	tr := Normalize(raw)

	assert.Equal(t, Long, tr.Direction)
	assert.Equal(t, "2024-03-11", tr.Day())
	require.NotNil(t, tr.EntryTime)
	require.NotNil(t, tr.ExitTime)
	assert.True(t, tr.ExitTime.After(*tr.EntryTime))
	require.NotNil(t, tr.StopLoss)
	assert.InDelta(t, 1.0950, *tr.StopLoss, 1e-9)
	assert.Nil(t, tr.TakeProfit)
	assert.Equal(t, []string{"london", "breakout"}, tr.Tags)
	assert.InDelta(t, 495, tr.PnL, 1e-6, "stored pnl must be ignored")
	assert.InDelta(t, 2.475, tr.RMultiple, 1e-6)
}

func TestNormalize_CamelCaseAndJSONNumbers(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{
		"id": 17,
		"instrument": "GBPJPY",
		"direction": "sell",
		"entryPrice": 190.50,
		"exitPrice": 190.00,
		"positionSize": 1000,
		"riskAmount": 250,
		"rMultiple": 99,
		"strategyTag": "ICT Concepts",
		"preEmotion": "Calm",
		"rulesFollowed": ["Check market structure", "Confirm liquidity sweep"],
		"screenshots": [{"url": "https://img/1.png", "label": "entry", "size": 2048}],
		"entryDatetime": "2024-03-12T08:00:00Z"
	}`))
	dec.UseNumber()
	var raw RawTrade
	require.NoError(t, dec.Decode(&raw))

	tr := Normalize(raw)

	assert.Equal(t, "17", tr.ID)
	assert.Equal(t, Short, tr.Direction)
	assert.InDelta(t, 500, tr.PnL, 1e-6)
	assert.InDelta(t, 2, tr.RMultiple, 1e-6)
	assert.Equal(t, "ICT Concepts", tr.StrategyTag)
	assert.Equal(t, "Calm", tr.PreEmotion)
	assert.Len(t, tr.RulesFollowed, 2)
	require.Len(t, tr.Screenshots, 1)
	assert.Equal(t, int64(2048), tr.Screenshots[0].Size)
	assert.Equal(t, "2024-03-12", tr.Day(), "date falls back to the entry timestamp")
}

func TestNormalize_MalformedNumbersFailOpen(t *testing.T) {
	tr := Normalize(RawTrade{
		"direction":   "long",
		"entry_price": "abc",
		"exit_price":  "NaN",
		"size":        "1e999",
		"risk_amount": nil,
	})

	assert.Equal(t, 0.0, tr.EntryPrice)
	assert.Equal(t, 0.0, tr.ExitPrice)
	assert.Equal(t, 0.0, tr.Size)
	assert.Equal(t, 0.0, tr.PnL)
	assert.Equal(t, 0.0, tr.RMultiple)
}

func TestParseDirection(t *testing.T) {
	testCases := []struct {
		in     string
		expect Direction
		valid  bool
	}{
		{"long", Long, true},
		{"Short", Short, true},
		{"BUY", Long, true},
		{"sell", Short, true},
		{"", Long, true},
		{"Sideways", Direction("sideways"), false},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			d := ParseDirection(tc.in)
			assert.Equal(t, tc.expect, d)
			assert.Equal(t, tc.valid, d.Valid())
		})
	}
}

func TestParse(t *testing.T) {
	valid := func() RawTrade {
		return RawTrade{
			"date":        "2024-03-11",
			"instrument":  "XAUUSD",
			"direction":   "long",
			"entry_price": "2150",
			"exit_price":  "2160",
			"size":        "1",
			"account":     "Apex 50k",
		}
	}

	t.Run("Valid", func(t *testing.T) {
		tr, err := Parse(valid())
		require.NoError(t, err)
		assert.InDelta(t, 10, tr.PnL, 1e-9)
	})

	testCases := []struct {
		name   string
		mutate func(RawTrade)
		field  string
	}{
		{"Missing instrument", func(r RawTrade) { delete(r, "instrument") }, "instrument"},
		{"Blank account", func(r RawTrade) { r["account"] = "  " }, "account"},
		{"Unknown direction", func(r RawTrade) { r["direction"] = "flat" }, "direction"},
		{"Zero size", func(r RawTrade) { r["size"] = "0" }, "size"},
		{"Negative exit", func(r RawTrade) { r["exit_price"] = "-1" }, "exit_price"},
		{"Negative fees", func(r RawTrade) { r["fees"] = "-2" }, "fees"},
		{"Bad date", func(r RawTrade) { r["date"] = "yesterday" }, "date"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := valid()
			tc.mutate(raw)

			_, err := Parse(raw)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTrade))
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-03-11", "2024-03-11T09:30", "2024-03-11T09:30:15", "2024-03-11T09:30:15Z", "2024-03-11 09:30"} {
		ts, ok := ParseTime(s)
		assert.True(t, ok, s)
		assert.Equal(t, 2024, ts.Year())
	}
	_, ok := ParseTime("11/03/2024")
	assert.False(t, ok)
}

func TestCalendarDay(t *testing.T) {
	loc := time.FixedZone("NY", -5*3600)
	day := CalendarDay(time.Date(2024, 3, 11, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), day)
}
