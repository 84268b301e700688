package app

import (
	"fmt"

	"breakoutScanner/config"
	"breakoutScanner/internal/risk"
	"breakoutScanner/internal/strategy"
)

// NewEngine builds the breakout detector and risk calculator from configuration.
func NewEngine(cfg *config.Config) (*strategy.Detector, *risk.Calculator, error) {
	detector, err := strategy.New(strategy.Config{
		MinTouches:     cfg.MinTouches,
		MaxTouchGapMin: cfg.MaxTouchGapMin,
		VolumeWindow:   cfg.VolumeWindow,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create breakout detector: %w", err)
	}

	calc, err := risk.NewCalculator(risk.RiskConfig{
		MaxRiskUSD:        cfg.MaxRiskUSD,
		MinRRRatio:        cfg.MinRRRatio,
		SafetyBuffer:      cfg.SafetyBuffer,
		MaxLeverage:       cfg.MaxLeverage,
		MaxPositionSize:   cfg.MaxPositionSize,
		StopLookback:      cfg.StopLookback,
		FallbackTargetPct: cfg.FallbackTargetPct,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create risk calculator: %w", err)
	}
	return detector, calc, nil
}
