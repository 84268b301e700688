package indicators

import (
	"breakoutScanner/internal/domain"
)

// Indicator represents a technical indicator that can be calculated from a candle series
type Indicator interface {
	// Calculate computes the indicator value for the most recent bar of the series
	Calculate(series domain.CandleSeries) (float64, error)

	// RequiredDataPoints returns the minimum number of candles needed for calculation
	RequiredDataPoints() int

	// Name returns the name of the indicator
	Name() string
}

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of candles needed for calculation
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period
}
