// Command scan_once runs a single detection and sizing pass against live
// market data and prints the result. Nothing is sent or journaled.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"breakoutScanner/config"
	"breakoutScanner/internal/adapters/binanceclient"
	"breakoutScanner/internal/adapters/chart"
	"breakoutScanner/internal/adapters/logger"
	"breakoutScanner/internal/adapters/sqlite"
	"breakoutScanner/internal/app"
	"breakoutScanner/internal/domain"
	"breakoutScanner/internal/ports"
	"breakoutScanner/internal/utils"
)

type options struct {
	csvPath   string
	chartPath string
	history   int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "scan_once",
		Short: "Run one breakout scan and print the result",
		Long: "Fetch the configured candle window, run breakout detection and risk sizing once,\n" +
			"and print the outcome. Optionally export the series as CSV, the plan as a PNG chart,\n" +
			"or list recent entries from the signal journal.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			appLogger := logger.New(logger.Config{Level: cfg.LogLevel, FilePath: cfg.LogFile})

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			if opts.history > 0 {
				repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
				if err != nil {
					return err
				}
				defer repo.Close()
				return printHistory(ctx, cmd.OutOrStdout(), repo, cfg.Symbol, opts.history)
			}

			client, err := binanceclient.New(binanceclient.Config{
				APIKey:         cfg.APIKey,
				SecretKey:      cfg.SecretKey,
				UseTestnet:     cfg.IsTestnet,
				Logger:         appLogger,
				RequestTimeout: cfg.RequestTimeout,
			})
			if err != nil {
				return err
			}
			defer client.Close()

			return runOnce(ctx, cmd.OutOrStdout(), cfg, client, opts)
		},
	}

	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "write the fetched series (with resistance column) to this CSV file")
	cmd.Flags().StringVar(&opts.chartPath, "chart", "", "write the plan chart to this PNG file when a plan is accepted")
	cmd.Flags().IntVar(&opts.history, "history", 0, "list the N most recent journaled signals instead of scanning")
	return cmd
}

// runOnce performs fetch, detect and size once and reports to out.
func runOnce(ctx context.Context, out io.Writer, cfg *config.Config, provider ports.MarketDataProvider, opts *options) error {
	detector, calc, err := app.NewEngine(cfg)
	if err != nil {
		return err
	}

	series, err := provider.GetKlines(ctx, cfg.Symbol, cfg.Timeframe, cfg.CandleLimit)
	if err != nil {
		return fmt.Errorf("fetch klines: %w", err)
	}
	if err := series.Validate(); err != nil {
		return fmt.Errorf("validate series: %w: %w", ports.ErrMalformedData, err)
	}
	fmt.Fprintf(out, "%s %s: %d candles, last close %.2f\n",
		series.Symbol, series.Interval, series.Len(), series.Candles[series.Len()-1].Close)

	detection := detector.Detect(series)
	fmt.Fprintf(out, "Touches: %d\n", len(detection.Touches))
	if detection.Trendline != nil {
		fmt.Fprintf(out, "Resistance: slope %.6f, value at last bar %.2f\n",
			detection.Trendline.Slope, detection.Trendline.At(series.Len()-1))
	}

	if opts.csvPath != "" {
		if err := utils.WriteSeriesToCSV(series, detection.Trendline, detection.Touches, opts.csvPath); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintf(out, "Series written to %s\n", opts.csvPath)
	}

	if !detection.Signaled() {
		fmt.Fprintf(out, "No breakout: %s\n", detection.Reason)
		return nil
	}

	decision := calc.Calculate(series, detection.Breakout.Index)
	if !decision.Accepted() {
		fmt.Fprintf(out, "Breakout rejected: %s\n", decision.Reason)
		return nil
	}
	plan := *decision.Plan
	if !plan.Valid() {
		fmt.Fprintf(out, "Breakout rejected: %s\n", domain.ReasonLiquidationBeyond)
		return nil
	}

	lastPrice, err := provider.GetLastPrice(ctx, cfg.Symbol)
	if err != nil {
		return fmt.Errorf("fetch last price: %w", err)
	}
	printPlan(out, plan, lastPrice)

	if opts.chartPath != "" && detection.Trendline != nil {
		img, err := chart.New().Render(series, *detection.Trendline, plan, app.ChartTitle(cfg.Symbol, cfg.Timeframe, plan))
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.chartPath, img, 0644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(out, "Chart written to %s\n", opts.chartPath)
	}
	return nil
}

func printPlan(out io.Writer, plan domain.TradePlan, lastPrice float64) {
	fmt.Fprintln(out, "LONG breakout plan")
	fmt.Fprintf(out, "  Entry:       %.4f (last %.4f)\n", plan.EntryPrice, lastPrice)
	fmt.Fprintf(out, "  Stop loss:   %.4f\n", plan.StopLoss)
	fmt.Fprintf(out, "  Take profit: %.4f\n", plan.TakeProfit)
	fmt.Fprintf(out, "  Liquidation: %.4f\n", plan.LiquidationPrice)
	fmt.Fprintf(out, "  Leverage:    %dx\n", plan.Leverage)
	fmt.Fprintf(out, "  Size:        %.6f\n", plan.PositionSize)
	fmt.Fprintf(out, "  RR:          1:%.2f\n", plan.RewardRiskRatio)
}

func printHistory(ctx context.Context, out io.Writer, repo ports.SignalRepository, symbol string, limit int) error {
	signals, err := repo.FindRecent(ctx, symbol, limit)
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		fmt.Fprintf(out, "No journaled signals for %s\n", symbol)
		return nil
	}
	fmt.Fprintf(out, "%-20s %-8s %12s %12s %12s %5s %6s %s\n", "TIME", "TF", "ENTRY", "SL", "TP", "LEV", "RR", "SENT")
	for _, s := range signals {
		fmt.Fprintf(out, "%-20s %-8s %12.4f %12.4f %12.4f %4dx %6.2f %t\n",
			s.CreatedAt.UTC().Format(time.DateTime), s.Interval,
			s.Plan.EntryPrice, s.Plan.StopLoss, s.Plan.TakeProfit,
			s.Plan.Leverage, s.Plan.RewardRiskRatio, s.Notified)
	}
	return nil
}
