package domain

// Touch is a strict local maximum of the high price, used as a trendline anchor.
type Touch struct {
	Index int     // Index into the series
	High  float64 // High price at Index
}

// Trendline is a fitted resistance line, materialized as one value per series index.
type Trendline struct {
	Slope     float64
	Intercept float64
	Values    []float64
}

// At returns the trendline value at index i.
func (t Trendline) At(i int) float64 {
	return t.Slope*float64(i) + t.Intercept
}

// BreakoutEvent marks a volume-confirmed close above the trendline.
type BreakoutEvent struct {
	Index int // Always the last index of the series
}

// Detection is the outcome of one detection pass. Breakout is nil when there is no
// signal, in which case Reason says why.
type Detection struct {
	Breakout  *BreakoutEvent
	Touches   []Touch
	Trendline *Trendline // nil when fewer than the minimum touches were found
	Reason    RejectReason
}

// Signaled reports whether the pass confirmed a breakout.
func (d Detection) Signaled() bool {
	return d.Breakout != nil
}
