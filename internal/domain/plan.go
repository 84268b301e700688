package domain

import "time"

// TradePlan is a complete long setup derived from a breakout.
type TradePlan struct {
	EntryPrice       float64
	StopLoss         float64
	TakeProfit       float64
	LiquidationPrice float64
	Leverage         int
	PositionSize     float64
	RewardRiskRatio  float64
}

// Valid is the final acceptance gate: liquidation must sit strictly below the
// stop and the position must have a positive size.
func (p TradePlan) Valid() bool {
	return p.LiquidationPrice < p.StopLoss && p.PositionSize > 0
}

// Signal is an emitted trade plan together with its context, as recorded in the journal.
type Signal struct {
	ID        string // UUID assigned at emission
	Symbol    string
	Interval  string
	Plan      TradePlan
	LastPrice float64   // Live last-traded price at emission time
	CreatedAt time.Time // Emission time
	Notified  bool      // Whether the notifier accepted the message
}

// Decision is the outcome of sizing a breakout. Plan is nil when the setup was
// rejected, in which case Reason says why.
type Decision struct {
	Plan   *TradePlan
	Reason RejectReason
}

// Accepted reports whether the decision carries a plan.
func (d Decision) Accepted() bool {
	return d.Plan != nil
}
