package strategy

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"breakoutScanner/internal/domain"
	"breakoutScanner/internal/strategy/indicators"
)

// Config holds parameters for the trendline breakout detector.
type Config struct {
	MinTouches     int     // e.g., 2
	MaxTouchGapMin float64 // e.g., 120 minutes between consecutive touches
	VolumeWindow   int     // e.g., 20 bars for the volume average
}

// Detector finds volume-confirmed breakouts above a rising resistance trendline.
// It performs no I/O; callers log the outcome.
type Detector struct {
	cfg    Config
	volume *indicators.VolumeAverage
}

// New creates a new Detector instance.
func New(cfg Config) (*Detector, error) {
	if cfg.MinTouches < 2 {
		return nil, fmt.Errorf("minimum touches must be at least 2 to fit a line")
	}
	if cfg.VolumeWindow <= 0 {
		return nil, fmt.Errorf("volume window must be positive")
	}
	if cfg.MaxTouchGapMin <= 0 {
		return nil, fmt.Errorf("max touch gap must be positive")
	}
	return &Detector{
		cfg:    cfg,
		volume: indicators.NewVolumeAverage(indicators.IndicatorConfig{Period: cfg.VolumeWindow}),
	}, nil
}

// RequiredDataPoints returns the minimum series length: the volume window, and at
// least three bars so that one interior index exists.
func (d *Detector) RequiredDataPoints() int {
	return max(d.volume.RequiredDataPoints(), 3)
}

// FindTouches returns every interior index whose high strictly exceeds both neighbours.
func FindTouches(series domain.CandleSeries) []domain.Touch {
	c := series.Candles
	var touches []domain.Touch
	for i := 1; i < len(c)-1; i++ {
		if c[i].High > c[i-1].High && c[i].High > c[i+1].High {
			touches = append(touches, domain.Touch{Index: i, High: c[i].High})
		}
	}
	return touches
}

// FitTrendline fits an ordinary least squares line through the touches and
// evaluates it at every index 0..n-1. It needs at least two touches.
func FitTrendline(touches []domain.Touch, n int) domain.Trendline {
	xs := make([]float64, len(touches))
	ys := make([]float64, len(touches))
	for i, t := range touches {
		xs[i] = float64(t.Index)
		ys[i] = t.High
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	line := domain.Trendline{Slope: slope, Intercept: intercept, Values: make([]float64, n)}
	for i := range line.Values {
		line.Values[i] = line.At(i)
	}
	return line
}

// Detect runs one detection pass. It is a pure function of the series.
func (d *Detector) Detect(series domain.CandleSeries) domain.Detection {
	n := series.Len()
	if n < d.RequiredDataPoints() {
		return domain.Detection{Reason: domain.ReasonInsufficientData}
	}

	touches := FindTouches(series)
	if len(touches) < d.cfg.MinTouches {
		return domain.Detection{Touches: touches, Reason: domain.ReasonTooFewTouches}
	}

	line := FitTrendline(touches, n)
	det := domain.Detection{Touches: touches, Trendline: &line}

	last, current := n-2, n-1
	c := series.Candles
	if !(c[last].Close < line.Values[last] && c[current].Close > line.Values[current]) {
		det.Reason = domain.ReasonNoCross
		return det
	}

	avgVolume, err := d.volume.Calculate(series)
	if err != nil {
		det.Reason = domain.ReasonInsufficientData
		return det
	}
	if !(c[current].Volume > avgVolume) {
		det.Reason = domain.ReasonLowVolume
		return det
	}

	// Every gap counts, old touches included.
	for i := 1; i < len(touches); i++ {
		gap := c[touches[i].Index].Timestamp.Sub(c[touches[i-1].Index].Timestamp).Minutes()
		if gap >= d.cfg.MaxTouchGapMin {
			det.Reason = domain.ReasonStaleTouches
			return det
		}
	}

	det.Breakout = &domain.BreakoutEvent{Index: current}
	return det
}
