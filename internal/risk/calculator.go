package risk

import (
	"fmt"
	"math"

	"breakoutScanner/internal/domain"
)

// RiskConfig holds configuration for trade plan sizing
type RiskConfig struct {
	MaxRiskUSD        float64 // Loss at the stop, in USD
	MinRRRatio        float64
	SafetyBuffer      float64 // Applied below the stop structure and to the liquidation price
	MaxLeverage       int
	MaxPositionSize   float64
	StopLookback      int     // Bars immediately preceding entry used for the stop
	FallbackTargetPct float64 // Used when no bar lies after the entry
}

// Calculator derives stop, target, leverage, size and liquidation for a breakout
type Calculator struct {
	config RiskConfig
}

// NewCalculator creates a new calculator instance
func NewCalculator(config RiskConfig) (*Calculator, error) {
	if config.MaxRiskUSD <= 0 {
		return nil, fmt.Errorf("max risk must be positive")
	}
	if config.MinRRRatio <= 0 {
		return nil, fmt.Errorf("minimum reward/risk ratio must be positive")
	}
	if config.SafetyBuffer < 0 || config.SafetyBuffer >= 1 {
		return nil, fmt.Errorf("safety buffer %f must be in [0, 1)", config.SafetyBuffer)
	}
	if config.MaxLeverage < 1 {
		return nil, fmt.Errorf("max leverage must be at least 1")
	}
	if config.MaxPositionSize <= 0 {
		return nil, fmt.Errorf("max position size must be positive")
	}
	if config.StopLookback <= 0 {
		return nil, fmt.Errorf("stop lookback must be positive")
	}
	if config.FallbackTargetPct <= 0 {
		return nil, fmt.Errorf("fallback target percent must be positive")
	}
	return &Calculator{config: config}, nil
}

// Calculate sizes a long entry at the close of entryIndex. A rejected setup is
// returned as a Decision without a plan, never as an error.
func (c *Calculator) Calculate(series domain.CandleSeries, entryIndex int) domain.Decision {
	if entryIndex < 0 || entryIndex >= series.Len() {
		return domain.Decision{Reason: domain.ReasonInvalidEntryIndex}
	}

	stop, ok := c.StopLoss(series, entryIndex)
	if !ok {
		return domain.Decision{Reason: domain.ReasonInsufficientData}
	}
	entry := series.Candles[entryIndex].Close
	target := c.TakeProfit(series, entryIndex)

	return c.BuildPlan(entry, stop, target)
}

// StopLoss returns the lowest low over the lookback window preceding the entry,
// reduced by the safety buffer. ok is false when no bar precedes the entry.
func (c *Calculator) StopLoss(series domain.CandleSeries, entryIndex int) (float64, bool) {
	start := max(0, entryIndex-c.config.StopLookback)
	if start >= entryIndex {
		return 0, false
	}
	lowest := math.Inf(1)
	for _, k := range series.Candles[start:entryIndex] {
		lowest = math.Min(lowest, k.Low)
	}
	return lowest * (1 - c.config.SafetyBuffer), true
}

// TakeProfit returns the nearest resistance ahead: the highest high strictly after
// the entry, or the entry close inflated by the fallback percentage.
func (c *Calculator) TakeProfit(series domain.CandleSeries, entryIndex int) float64 {
	ahead := series.Candles[entryIndex+1:]
	if len(ahead) == 0 {
		return series.Candles[entryIndex].Close * (1 + c.config.FallbackTargetPct)
	}
	highest := math.Inf(-1)
	for _, k := range ahead {
		highest = math.Max(highest, k.High)
	}
	return highest
}

// BuildPlan applies the risk policy to an entry, stop and target.
func (c *Calculator) BuildPlan(entry, stop, target float64) domain.Decision {
	risk := entry - stop
	if !(risk > 0) {
		return domain.Decision{Reason: domain.ReasonNonPositiveRisk}
	}

	rr := (target - entry) / risk
	if !(rr >= c.config.MinRRRatio) {
		return domain.Decision{Reason: domain.ReasonLowRewardRisk}
	}

	leverage := c.Leverage(entry, stop)
	plan := &domain.TradePlan{
		EntryPrice:       entry,
		StopLoss:         stop,
		TakeProfit:       target,
		Leverage:         leverage,
		PositionSize:     c.PositionSize(entry, stop),
		LiquidationPrice: c.LiquidationPrice(entry, leverage),
		RewardRiskRatio:  rr,
	}

	if !(plan.LiquidationPrice < plan.StopLoss) {
		return domain.Decision{Reason: domain.ReasonLiquidationBeyond}
	}
	if !(plan.PositionSize > 0) {
		return domain.Decision{Reason: domain.ReasonZeroPositionSize}
	}
	return domain.Decision{Plan: plan}
}

// Leverage returns floor(1 / (1 - stop/entry)) clamped to [1, MaxLeverage].
// It is evaluated as entry/(entry-stop) so that round stops land on whole values.
func (c *Calculator) Leverage(entry, stop float64) int {
	if !(entry > stop) {
		return 1
	}
	lev := math.Floor(entry / (entry - stop))
	if lev > float64(c.config.MaxLeverage) {
		return c.config.MaxLeverage
	}
	if lev < 1 {
		return 1
	}
	return int(lev)
}

// PositionSize returns the size whose loss at the stop equals MaxRiskUSD, capped at
// MaxPositionSize. It is zero when the risk per unit is not positive.
func (c *Calculator) PositionSize(entry, stop float64) float64 {
	riskPerUnit := entry - stop
	if riskPerUnit <= 0 {
		return 0
	}
	return math.Min(c.config.MaxRiskUSD/riskPerUnit, c.config.MaxPositionSize)
}

// LiquidationPrice estimates where a long at the given leverage is force-closed.
func (c *Calculator) LiquidationPrice(entry float64, leverage int) float64 {
	return entry * (1 - 1/float64(leverage)) * (1 - c.config.SafetyBuffer)
}
