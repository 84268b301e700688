package indicators

import (
	"fmt"

	"breakoutScanner/internal/domain"
)

// VolumeAverage is the simple moving average of traded volume over the last Period
// bars, the most recent bar included.
type VolumeAverage struct {
	BaseIndicator
}

// NewVolumeAverage creates a new volume average indicator instance
func NewVolumeAverage(config IndicatorConfig) *VolumeAverage {
	return &VolumeAverage{BaseIndicator: BaseIndicator{Config: config}}
}

// Name returns the name of the indicator
func (v *VolumeAverage) Name() string {
	return fmt.Sprintf("VOL_SMA_%d", v.Config.Period)
}

// Calculate returns mean(volume[n-period .. n-1]).
func (v *VolumeAverage) Calculate(series domain.CandleSeries) (float64, error) {
	period := v.Config.Period
	if period <= 0 {
		return 0, fmt.Errorf("invalid volume average period %d", period)
	}
	n := series.Len()
	if n < period {
		return 0, fmt.Errorf("not enough data (%d) to calculate volume average for period %d", n, period)
	}

	total := 0.0
	for i := n - period; i < n; i++ {
		total += series.Candles[i].Volume
	}
	return total / float64(period), nil
}
