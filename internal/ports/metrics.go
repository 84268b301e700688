package ports

import (
	"time"

	"breakoutScanner/internal/domain"
)

// Cycle outcomes reported to Metrics.
const (
	OutcomeSignal     = "signal"
	OutcomeNoSignal   = "no_signal"
	OutcomeRejected   = "rejected"
	OutcomeFetchError = "fetch_error"
	OutcomeCooldown   = "cooldown"
)

// Metrics records scanner activity.
type Metrics interface {
	ObserveCycle(outcome string, duration time.Duration)
	ObserveRejection(reason domain.RejectReason)
	ObserveSignal(plan domain.TradePlan)
	ObserveNotificationFailure()
}
