package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"breakoutScanner/internal/domain"
)

func TestChartTitle(t *testing.T) {
	plan := domain.TradePlan{RewardRiskRatio: 3.04, Leverage: 16}
	assert.Equal(t, "BTCUSDT 15m | RR 1:3.0 | Leverage: 16x", ChartTitle("BTCUSDT", "15m", plan))
}

func TestSignalCaption(t *testing.T) {
	sig := &domain.Signal{
		Symbol:    "ETHUSDT",
		Interval:  "15m",
		Plan:      domain.TradePlan{EntryPrice: 2000, StopLoss: 1950, TakeProfit: 2200, LiquidationPrice: 1940.1, Leverage: 40, PositionSize: 0.02, RewardRiskRatio: 4},
		LastPrice: 2001.25,
		CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	got := signalCaption(sig)
	assert.Contains(t, got, "*Long breakout ETHUSDT 15m*")
	assert.Contains(t, got, "Time: `2024-05-01 09:30:00`")
	assert.Contains(t, got, "Entry: `2000.00`")
	assert.Contains(t, got, "Last price: `2001.25`")
	assert.Contains(t, got, "Leverage: `40x`")
	assert.Contains(t, got, "RR: `1:4.0`")
	assert.Contains(t, got, "Size: `0.0200`")
}

func TestShutdownMessage(t *testing.T) {
	assert.Equal(t, "🛑 *Monitoring of BTCUSDT stopped*", shutdownMessage("BTCUSDT", nil))
	assert.Contains(t, shutdownMessage("BTCUSDT", errors.New("bad key")), "`bad key`")
}

func TestRealClock_SleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RealClock{}.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, RealClock{}.Sleep(context.Background(), time.Millisecond))
}
