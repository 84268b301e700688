package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakoutScanner/config"
)

func engineConfig() *config.Config {
	return &config.Config{
		MinTouches:        2,
		MaxTouchGapMin:    120,
		VolumeWindow:      20,
		MaxRiskUSD:        1,
		MinRRRatio:        3,
		SafetyBuffer:      0.005,
		MaxLeverage:       100,
		MaxPositionSize:   1000,
		StopLookback:      5,
		FallbackTargetPct: 0.03,
	}
}

func TestNewEngine(t *testing.T) {
	detector, calc, err := NewEngine(engineConfig())
	require.NoError(t, err)
	assert.NotNil(t, calc)
	assert.Equal(t, 20, detector.RequiredDataPoints())

	cfg := engineConfig()
	cfg.MinTouches = 1
	_, _, err = NewEngine(cfg)
	assert.Error(t, err)

	cfg = engineConfig()
	cfg.MaxLeverage = 0
	_, _, err = NewEngine(cfg)
	assert.Error(t, err)
}
