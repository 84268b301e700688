package app

import (
	"fmt"
	"strings"
	"time"

	"breakoutScanner/internal/domain"
)

func startupMessage(symbol, interval string) string {
	return fmt.Sprintf("✅ *Breakout scanner started*\nWatching `%s` on `%s`", symbol, interval)
}

func shutdownMessage(symbol string, cause error) string {
	if cause != nil {
		return fmt.Sprintf("🛑 *Monitoring of %s stopped* after an error:\n`%s`", symbol, cause.Error())
	}
	return fmt.Sprintf("🛑 *Monitoring of %s stopped*", symbol)
}

// signalCaption renders the Markdown caption sent with a signal.
func signalCaption(sig *domain.Signal) string {
	p := sig.Plan
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 *Long breakout %s %s*\n", sig.Symbol, sig.Interval)
	fmt.Fprintf(&b, "⏰ Time: `%s`\n", sig.CreatedAt.UTC().Format(time.DateTime))
	fmt.Fprintf(&b, "📈 Entry: `%.2f`\n", p.EntryPrice)
	fmt.Fprintf(&b, "💹 Last price: `%.2f`\n", sig.LastPrice)
	fmt.Fprintf(&b, "🛑 SL: `%.2f`\n", p.StopLoss)
	fmt.Fprintf(&b, "🎯 TP: `%.2f`\n", p.TakeProfit)
	fmt.Fprintf(&b, "💀 Liquidation: `%.2f`\n", p.LiquidationPrice)
	fmt.Fprintf(&b, "📊 Leverage: `%dx`\n", p.Leverage)
	fmt.Fprintf(&b, "📉 RR: `1:%.1f`\n", p.RewardRiskRatio)
	fmt.Fprintf(&b, "💵 Size: `%.4f`", p.PositionSize)
	return b.String()
}

// ChartTitle is the headline drawn above a signal chart.
func ChartTitle(symbol, interval string, plan domain.TradePlan) string {
	return fmt.Sprintf("%s %s | RR 1:%.1f | Leverage: %dx", symbol, interval, plan.RewardRiskRatio, plan.Leverage)
}
