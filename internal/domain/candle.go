package domain

import (
	"fmt"
	"math"
	"time"
)

// Candle represents a single OHLCV bar.
type Candle struct {
	Timestamp time.Time // Open time of the interval
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// CandleSeries is a chronological, fixed-length window of candles for one instrument.
// A series is produced fresh on every poll and never mutated afterwards.
type CandleSeries struct {
	Symbol   string
	Interval string
	Candles  []Candle
}

// Len returns the number of candles in the series.
func (s CandleSeries) Len() int {
	return len(s.Candles)
}

// Highs returns the high prices in chronological order.
func (s CandleSeries) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

// Lows returns the low prices in chronological order.
func (s CandleSeries) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Closes returns the close prices in chronological order.
func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Volumes returns the traded volumes in chronological order.
func (s CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// Validate checks that the series is strictly chronological and that every
// price and volume is a finite, non-negative number.
func (s CandleSeries) Validate() error {
	for i, c := range s.Candles {
		for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("candle %d has invalid value %v", i, v)
			}
		}
		if c.Low > c.High {
			return fmt.Errorf("candle %d has low %.8f above high %.8f", i, c.Low, c.High)
		}
		if i > 0 && !c.Timestamp.After(s.Candles[i-1].Timestamp) {
			return fmt.Errorf("candle %d at %s is not after candle %d at %s",
				i, c.Timestamp.Format(time.RFC3339), i-1, s.Candles[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
