package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"breakoutScanner/config"
	"breakoutScanner/internal/adapters/binanceclient"
	"breakoutScanner/internal/adapters/chart"
	"breakoutScanner/internal/adapters/logger"
	"breakoutScanner/internal/adapters/metrics"
	"breakoutScanner/internal/adapters/sqlite"
	"breakoutScanner/internal/adapters/telegram"
	"breakoutScanner/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, FilePath: cfg.LogFile})
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Signal Journal (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize signal journal")
		log.Fatalf("FATAL: Failed to initialize signal journal: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing signal journal")
		}
	}()
	appLogger.Info(context.Background(), "Signal journal initialized")

	// 4. Initialize Market Data Provider (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:         cfg.APIKey,
		SecretKey:      cfg.SecretKey,
		UseTestnet:     cfg.IsTestnet,
		Logger:         appLogger,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	appLogger.Info(context.Background(), "Binance client initialized")

	// 5. Initialize Detector and Risk Calculator
	detector, calc, err := app.NewEngine(cfg)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize breakout engine")
		log.Fatalf("FATAL: Failed to initialize breakout engine: %v", err)
	}
	appLogger.Info(context.Background(), "Breakout engine initialized", map[string]interface{}{
		"requiredCandles": detector.RequiredDataPoints(),
		"candleLimit":     cfg.CandleLimit,
	})

	// 6. Initialize Notifier (Telegram Adapter)
	notifier, err := telegram.New(telegram.Config{
		BotToken: cfg.TelegramToken,
		ChatID:   cfg.TelegramChatID,
		Timeout:  cfg.RequestTimeout,
		Logger:   appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Telegram notifier")
		log.Fatalf("FATAL: Failed to initialize Telegram notifier: %v", err)
	}

	// Cancel on SIGINT/SIGTERM; the scanner observes it between cycles.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Initialize Metrics
	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr, appLogger); err != nil {
				appLogger.Error(ctx, err, "Metrics server stopped")
			}
		}()
	}

	// 8. Initialize Scanner
	scanner, err := app.NewScanner(cfg, app.Dependencies{
		Logger:   appLogger,
		Provider: binanceClient,
		Detector: detector,
		Calc:     calc,
		Notifier: notifier,
		Renderer: chart.New(),
		Journal:  repo,
		Metrics:  recorder,
		Clock:    app.RealClock{},
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize scanner")
		log.Fatalf("FATAL: Failed to initialize scanner: %v", err)
	}
	appLogger.Info(context.Background(), "Scanner initialized")

	// 9. Run until cancelled
	if err := scanner.Run(ctx); err != nil {
		appLogger.Error(context.Background(), err, "Scanner exited with error")
		stop()
		repo.Close()
		os.Exit(1)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
