package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakoutScanner/internal/domain"
)

func defaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxRiskUSD:        1.0,
		MinRRRatio:        3.0,
		SafetyBuffer:      0.005,
		MaxLeverage:       100,
		MaxPositionSize:   1000,
		StopLookback:      5,
		FallbackTargetPct: 0.03,
	}
}

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator(defaultRiskConfig())
	require.NoError(t, err)
	return c
}

func seriesFrom(lows, highs, closes []float64) domain.CandleSeries {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, len(closes))
	for i := range closes {
		candles[i] = domain.Candle{
			Timestamp: start.Add(time.Duration(i) * 15 * time.Minute),
			Open:      closes[i],
			High:      highs[i],
			Low:       lows[i],
			Close:     closes[i],
			Volume:    10,
		}
	}
	return domain.CandleSeries{Symbol: "BTCUSDT", Interval: "15m", Candles: candles}
}

func TestNewCalculator_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *RiskConfig)
	}{
		{"zero risk", func(c *RiskConfig) { c.MaxRiskUSD = 0 }},
		{"zero rr", func(c *RiskConfig) { c.MinRRRatio = 0 }},
		{"buffer of one", func(c *RiskConfig) { c.SafetyBuffer = 1 }},
		{"zero leverage", func(c *RiskConfig) { c.MaxLeverage = 0 }},
		{"zero size cap", func(c *RiskConfig) { c.MaxPositionSize = 0 }},
		{"zero lookback", func(c *RiskConfig) { c.StopLookback = 0 }},
		{"zero fallback", func(c *RiskConfig) { c.FallbackTargetPct = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultRiskConfig()
			tt.mutate(&cfg)
			c, err := NewCalculator(cfg)
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestBuildPlan_ReferenceScenario(t *testing.T) {
	c := newCalculator(t)

	decision := c.BuildPlan(100, 95, 130)

	require.True(t, decision.Accepted(), "rejected: %s", decision.Reason)
	plan := decision.Plan
	assert.InDelta(t, 6.0, plan.RewardRiskRatio, 1e-9)
	assert.Equal(t, 20, plan.Leverage)
	assert.InDelta(t, 94.525, plan.LiquidationPrice, 1e-9)
	assert.Less(t, plan.LiquidationPrice, plan.StopLoss)
	assert.InDelta(t, 0.2, plan.PositionSize, 1e-12)
	assert.True(t, plan.Valid())
}

func TestBuildPlan_Rejections(t *testing.T) {
	c := newCalculator(t)

	tests := []struct {
		name                string
		entry, stop, target float64
		want                domain.RejectReason
	}{
		{"stop equal to entry", 100, 100, 130, domain.ReasonNonPositiveRisk},
		{"stop above entry", 100, 101, 130, domain.ReasonNonPositiveRisk},
		{"reward below minimum", 100, 95, 110, domain.ReasonLowRewardRisk},
		{"target below entry", 100, 95, 90, domain.ReasonLowRewardRisk},
		{"undefined target", 100, 95, math.NaN(), domain.ReasonLowRewardRisk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := c.BuildPlan(tt.entry, tt.stop, tt.target)
			assert.False(t, decision.Accepted())
			assert.Equal(t, tt.want, decision.Reason)
		})
	}
}

func TestBuildPlan_ExactlyMinimumRRIsAccepted(t *testing.T) {
	c := newCalculator(t)
	decision := c.BuildPlan(100, 98, 106)
	require.True(t, decision.Accepted())
	assert.InDelta(t, 3.0, decision.Plan.RewardRiskRatio, 1e-12)
}

func TestLeverage(t *testing.T) {
	c := newCalculator(t)

	assert.Equal(t, 20, c.Leverage(100, 95))
	assert.Equal(t, 66, c.Leverage(100, 98.505))
	assert.Equal(t, 100, c.Leverage(100, 99.9), "capped at the maximum")
	assert.Equal(t, 1, c.Leverage(100, 0), "stop at zero still yields 1x")
	assert.Equal(t, 1, c.Leverage(100, 100), "degenerate stop falls back to 1x")
}

func TestPositionSize(t *testing.T) {
	c := newCalculator(t)

	assert.InDelta(t, 0.5, c.PositionSize(100, 98), 1e-12)
	assert.Equal(t, 1000.0, c.PositionSize(100, 99.9999), "capped at the maximum")
	assert.Equal(t, 0.0, c.PositionSize(100, 100))
	assert.Equal(t, 0.0, c.PositionSize(100, 105))
}

func TestCalculate_ResistanceAhead(t *testing.T) {
	c := newCalculator(t)
	series := seriesFrom(
		[]float64{99.5, 99.2, 99.0, 99.4, 99.6, 99.8, 99.9, 101, 104, 103},
		[]float64{100, 100, 100, 100, 100, 100, 100.5, 105, 110, 108},
		[]float64{99.8, 99.6, 99.5, 99.7, 99.9, 100.1, 100, 104, 109, 107},
	)

	decision := c.Calculate(series, 6)

	require.True(t, decision.Accepted(), "rejected: %s", decision.Reason)
	plan := decision.Plan
	assert.Equal(t, 100.0, plan.EntryPrice)
	assert.InDelta(t, 99.0*0.995, plan.StopLoss, 1e-9)
	assert.Equal(t, 110.0, plan.TakeProfit)
	assert.InDelta(t, 10/(100-98.505), plan.RewardRiskRatio, 1e-9)
	assert.Equal(t, 66, plan.Leverage)
	assert.Less(t, plan.LiquidationPrice, plan.StopLoss)
}

func TestCalculate_LastIndexUsesFallbackTarget(t *testing.T) {
	c := newCalculator(t)
	series := seriesFrom(
		[]float64{100.5, 100.6, 100.5, 100.7, 100.8, 100.6},
		[]float64{101, 101, 101, 101, 101, 101.2},
		[]float64{100.7, 100.8, 100.7, 100.9, 101, 100.8},
	)

	decision := c.Calculate(series, 5)

	require.True(t, decision.Accepted(), "rejected: %s", decision.Reason)
	assert.InDelta(t, 100.8*1.03, decision.Plan.TakeProfit, 1e-9)
	assert.InDelta(t, 100.5*0.995, decision.Plan.StopLoss, 1e-9)
	assert.Equal(t, 100, decision.Plan.Leverage, "capped at the maximum")
}

func TestCalculate_DegenerateInputs(t *testing.T) {
	c := newCalculator(t)
	series := seriesFrom(
		[]float64{110, 111, 112, 100},
		[]float64{112, 113, 114, 101},
		[]float64{111, 112, 113, 100},
	)

	assert.Equal(t, domain.ReasonNonPositiveRisk, c.Calculate(series, 3).Reason,
		"lows above the entry put the stop above the entry")
	assert.Equal(t, domain.ReasonInsufficientData, c.Calculate(series, 0).Reason)
	assert.Equal(t, domain.ReasonInvalidEntryIndex, c.Calculate(series, 4).Reason)
	assert.Equal(t, domain.ReasonInvalidEntryIndex, c.Calculate(series, -1).Reason)
}

func TestTradePlan_ValidGate(t *testing.T) {
	assert.True(t, domain.TradePlan{StopLoss: 95, LiquidationPrice: 94.5, PositionSize: 1}.Valid())
	assert.False(t, domain.TradePlan{StopLoss: 95, LiquidationPrice: 95, PositionSize: 1}.Valid())
	assert.False(t, domain.TradePlan{StopLoss: 95, LiquidationPrice: 96, PositionSize: 1}.Valid())
	assert.False(t, domain.TradePlan{StopLoss: 95, LiquidationPrice: 90, PositionSize: 0}.Valid())
}
