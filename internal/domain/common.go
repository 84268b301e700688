package domain

// RejectReason explains why a detection pass produced no signal or a plan was discarded.
// These are valid outcomes, not errors.
type RejectReason string

const (
	ReasonNone              RejectReason = ""
	ReasonInsufficientData  RejectReason = "INSUFFICIENT_DATA"
	ReasonTooFewTouches     RejectReason = "TOO_FEW_TOUCHES"
	ReasonNoCross           RejectReason = "NO_CROSS"
	ReasonLowVolume         RejectReason = "LOW_VOLUME"
	ReasonStaleTouches      RejectReason = "STALE_TOUCHES"
	ReasonNonPositiveRisk   RejectReason = "NON_POSITIVE_RISK"
	ReasonLowRewardRisk     RejectReason = "LOW_REWARD_RISK"
	ReasonLiquidationBeyond RejectReason = "LIQUIDATION_NOT_BELOW_STOP" // Liquidation would trigger before the stop
	ReasonZeroPositionSize  RejectReason = "ZERO_POSITION_SIZE"
	ReasonInvalidEntryIndex RejectReason = "INVALID_ENTRY_INDEX"
)

// ScanState is the state of the scan cycle controller.
type ScanState string

const (
	StateScanning ScanState = "scanning"
	StateCooldown ScanState = "cooldown"
)
