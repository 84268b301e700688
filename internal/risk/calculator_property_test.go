package risk

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"breakoutScanner/internal/domain"
)

func TestProperty_PlansHonourRiskPolicy(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	cfg := defaultRiskConfig()
	cfg.MinRRRatio = 1.5
	cfg.MaxLeverage = 25
	c, err := NewCalculator(cfg)
	if err != nil {
		t.Fatal(err)
	}

	properties.Property("accepted plans satisfy RR, liquidation, size and leverage bounds", prop.ForAll(
		func(lows, spreads []float64, entryIndex int) bool {
			n := len(lows)
			closes := make([]float64, n)
			highs := make([]float64, n)
			for i := range lows {
				closes[i] = lows[i] + spreads[i]/2
				highs[i] = lows[i] + spreads[i]
			}
			decision := c.Calculate(seriesFrom(lows, highs, closes), entryIndex)
			if !decision.Accepted() {
				return decision.Reason != domain.ReasonNone
			}
			p := decision.Plan
			return p.RewardRiskRatio >= cfg.MinRRRatio &&
				p.LiquidationPrice < p.StopLoss &&
				p.PositionSize > 0 &&
				p.PositionSize <= cfg.MaxPositionSize &&
				p.Leverage >= 1 && p.Leverage <= cfg.MaxLeverage &&
				p.Valid()
		},
		gen.SliceOfN(30, gen.Float64Range(50.0, 150.0)),
		gen.SliceOfN(30, gen.Float64Range(0.0, 10.0)),
		gen.IntRange(0, 29),
	))

	properties.Property("leverage is a positive integer within the cap", prop.ForAll(
		func(entry, stopFrac float64) bool {
			lev := c.Leverage(entry, entry*stopFrac)
			return lev >= 1 && lev <= cfg.MaxLeverage
		},
		gen.Float64Range(1.0, 100000.0),
		gen.Float64Range(0.0, 1.2),
	))

	properties.TestingRun(t)
}
