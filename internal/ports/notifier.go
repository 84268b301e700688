package ports

import (
	"context"

	"breakoutScanner/internal/domain"
)

// Notifier delivers messages to the operator channel.
type Notifier interface {
	// SendText delivers a plain text (Markdown) message.
	SendText(ctx context.Context, message string) error
	// SendImage delivers a PNG image with a caption.
	SendImage(ctx context.Context, image []byte, caption string) error
}

// ChartRenderer produces a PNG chart of a trade plan over its series.
// Implementations must be free of side effects.
type ChartRenderer interface {
	Render(series domain.CandleSeries, trendline domain.Trendline, plan domain.TradePlan, title string) ([]byte, error)
}
