package ports

import (
	"context"

	"breakoutScanner/internal/domain"
)

// MarketDataProvider supplies candles and live prices for an instrument.
// Implementations own a connection that is released once via Close.
type MarketDataProvider interface {
	// GetKlines returns the most recent candles in chronological order.
	GetKlines(ctx context.Context, symbol, interval string, limit int) (domain.CandleSeries, error)

	// GetLastPrice returns the last traded price for a symbol.
	GetLastPrice(ctx context.Context, symbol string) (float64, error)

	// Close releases the underlying connection.
	Close() error
}
