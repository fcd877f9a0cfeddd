package journal

import (
	"github.com/stretchr/testify/assert"
	"math"
	"testing"
)

func TestComputeMetrics(t *testing.T) {
	testCases := []struct {
		name      string
		trade     Trade
		expectPnL float64
		expectR   float64
	}{
		{
			name: "Long EURUSD with fees",
			trade: Trade{Direction: Long, EntryPrice: 1.1000, ExitPrice: 1.1050, Size: 100000, Fees: 5, RiskAmount: 200},
			// (1.1050-1.1000)*100000 - 5 = 495, 495/200 = 2.475
			expectPnL: 495,
			expectR:   2.475,
		},
		{
			name:      "Short winner",
			trade:     Trade{Direction: Short, EntryPrice: 150, ExitPrice: 140, Size: 10, RiskAmount: 50},
			expectPnL: 100,
			expectR:   2,
		},
		{
			name:      "Short loser with fees",
			trade:     Trade{Direction: Short, EntryPrice: 100, ExitPrice: 110, Size: 2, Fees: 1, RiskAmount: 10},
			expectPnL: -21,
			expectR:   -2.1,
		},
		{
			name:      "No risk amount gives zero R",
			trade:     Trade{Direction: Long, EntryPrice: 10, ExitPrice: 12, Size: 5},
			expectPnL: 10,
			expectR:   0,
		},
		{
			name:      "Zero size only pays fees",
			trade:     Trade{Direction: Long, EntryPrice: 10, ExitPrice: 12, Fees: 3, RiskAmount: 6},
			expectPnL: -3,
			expectR:   -0.5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := ComputeMetrics(tc.trade)
			assert.InDelta(t, tc.expectPnL, m.PnL, 1e-6)
			assert.InDelta(t, tc.expectR, m.RMultiple, 1e-6)
		})
	}
}

func TestDeriveIgnoresStoredValues(t *testing.T) {
	stale := Trade{Direction: Long, EntryPrice: 100, ExitPrice: 101, Size: 1, PnL: 9999, RMultiple: 42}

	got := Derive(stale)

	assert.InDelta(t, 1.0, got.PnL, 1e-9)
	assert.Equal(t, 0.0, got.RMultiple)
	assert.Equal(t, 9999.0, stale.PnL, "input must not be mutated")
}

func TestDeriveAll(t *testing.T) {
	in := []Trade{
		{Direction: Long, EntryPrice: 1, ExitPrice: 2, Size: 1},
		{Direction: Short, EntryPrice: 1, ExitPrice: 2, Size: 1},
	}

	out := DeriveAll(in)

	assert.Len(t, out, 2)
	assert.InDelta(t, 1.0, out[0].PnL, 1e-9)
	assert.InDelta(t, -1.0, out[1].PnL, 1e-9)
	assert.Equal(t, 0.0, in[0].PnL)
}

func TestRiskPercent(t *testing.T) {
	assert.InDelta(t, 2.5, RiskPercent(2500, 100000), 1e-9)
	assert.Equal(t, 0.0, RiskPercent(2500, 0))
	assert.Equal(t, 0.0, RiskPercent(0, 100000))
}

func TestRewardRiskRatio(t *testing.T) {
	assert.InDelta(t, 1.5, RewardRiskRatio(-150, 100), 1e-9)
	assert.Equal(t, 0.0, RewardRiskRatio(150, 0))
}

func TestOptimalPosition(t *testing.T) {
	t.Run("One percent of capital over the stop distance", func(t *testing.T) {
		pos := OptimalPosition(1.1000, 1.0950, 100000, 1)
		assert.InDelta(t, 1000, pos.RiskAmount, 1e-9)
		assert.InDelta(t, 200000, pos.Size, 1e-3)
	})

	t.Run("Stop at entry", func(t *testing.T) {
		pos := OptimalPosition(1.1, 1.1, 100000, 1)
		assert.Equal(t, 0.0, pos.Size)
		assert.False(t, math.IsInf(pos.Size, 0))
	})
}

func TestLivePnL(t *testing.T) {
	open := Trade{Direction: Short, EntryPrice: 1.2700, Size: 10000, Fees: 2}
	assert.InDelta(t, 18, LivePnL(open, 1.2680), 1e-6)
}
