package ports

import "breakoutScanner/internal/domain"

// BreakoutDetector finds volume-confirmed trendline breakouts.
type BreakoutDetector interface {
	// RequiredDataPoints returns the minimum series length the detector needs.
	RequiredDataPoints() int

	// Detect runs one pure detection pass over the series.
	Detect(series domain.CandleSeries) domain.Detection
}

// RiskCalculator turns a breakout into a trade plan or a rejection.
type RiskCalculator interface {
	Calculate(series domain.CandleSeries, entryIndex int) domain.Decision
}
