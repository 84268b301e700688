package chart

import (
	"bytes"
	"fmt"
	"time"

	"breakoutScanner/internal/domain"
	"breakoutScanner/internal/ports"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	colorClose       = drawing.ColorFromHex("1f2937")
	colorTrendline   = drawing.ColorFromHex("7c3aed")
	colorStopLoss    = drawing.ColorFromHex("dc2626")
	colorTakeProfit  = drawing.ColorFromHex("2563eb")
	colorLiquidation = drawing.ColorFromHex("f97316")
)

// Renderer implements ports.ChartRenderer with go-chart. It holds no state.
type Renderer struct {
	Width  int
	Height int
}

// New creates a renderer with the default canvas size.
func New() *Renderer {
	return &Renderer{Width: 1280, Height: 720}
}

// Render draws closes, the resistance trendline and the plan levels as a PNG.
func (r *Renderer) Render(series domain.CandleSeries, trendline domain.Trendline, plan domain.TradePlan, title string) ([]byte, error) {
	n := series.Len()
	if n < 2 {
		return nil, fmt.Errorf("Render failed: %w: need at least 2 candles, got %d", ports.ErrRenderFailed, n)
	}

	times := make([]time.Time, n)
	for i, c := range series.Candles {
		times[i] = c.Timestamp
	}
	span := []time.Time{times[0], times[n-1]}

	line := trendline.Values
	if len(line) != n {
		line = make([]float64, n)
		for i := range line {
			line[i] = trendline.At(i)
		}
	}

	level := func(name string, value float64, color drawing.Color) gochart.TimeSeries {
		return gochart.TimeSeries{
			Name:    fmt.Sprintf("%s %.4f", name, value),
			XValues: span,
			YValues: []float64{value, value},
			Style:   gochart.Style{StrokeColor: color, StrokeWidth: 1.5},
		}
	}

	graph := gochart.Chart{
		Title:  title,
		Width:  r.Width,
		Height: r.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Time",
			ValueFormatter: gochart.TimeMinuteValueFormatter,
		},
		YAxis: gochart.YAxis{Name: "Price"},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Close",
				XValues: times,
				YValues: series.Closes(),
				Style:   gochart.Style{StrokeColor: colorClose, StrokeWidth: 2},
			},
			gochart.TimeSeries{
				Name:    "Resistance",
				XValues: times,
				YValues: line,
				Style: gochart.Style{
					StrokeColor:     colorTrendline,
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{6, 4},
				},
			},
			level("SL", plan.StopLoss, colorStopLoss),
			level("TP", plan.TakeProfit, colorTakeProfit),
			level("Liq", plan.LiquidationPrice, colorLiquidation),
		},
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("Render failed: %w: %w", ports.ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}
