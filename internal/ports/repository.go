package ports

import (
	"context"

	"breakoutScanner/internal/domain"
)

// SignalRepository is an append-only journal of emitted signals.
// The scanner never reads it back to make decisions.
type SignalRepository interface {
	// SaveSignal stores a signal and returns its row ID.
	SaveSignal(ctx context.Context, sig *domain.Signal) (int64, error)
	// FindRecent returns the most recent signals for a symbol, newest first.
	FindRecent(ctx context.Context, symbol string, limit int) ([]*domain.Signal, error)
}
