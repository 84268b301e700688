package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"breakoutScanner/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Binance API (market data endpoints are public, keys are optional)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Instrument
	Symbol      string
	Timeframe   string // Kline interval, e.g. "15m"
	CandleLimit int    // Series window length

	// Scan cycle
	PollInterval   time.Duration // Sleep after a cycle without a valid plan
	Cooldown       time.Duration // Sleep after an emitted signal
	RequestTimeout time.Duration // Per external call

	// Detector parameters
	MinTouches     int
	MaxTouchGapMin float64 // Minutes between consecutive touches
	VolumeWindow   int

	// Risk parameters
	MaxRiskUSD        float64
	MinRRRatio        float64
	SafetyBuffer      float64 // e.g. 0.005 for 0.5%
	MaxLeverage       int
	MaxPositionSize   float64
	StopLookback      int     // Bars before entry used for the stop
	FallbackTargetPct float64 // Take-profit when no resistance lies ahead

	// Telegram
	TelegramToken  string
	TelegramChatID string

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFile  string

	// Metrics
	MetricsAddr string // Empty disables the metrics server
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Instrument
	cfg.Symbol = getEnv("SYMBOL", "BTCUSDT")
	cfg.Timeframe = getEnv("TIMEFRAME", "15m")
	if cfg.Timeframe == "" {
		errs = append(errs, "TIMEFRAME must be set")
	}

	cfg.CandleLimit, err = getEnvAsIntRequired("CANDLE_LIMIT", 100)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CANDLE_LIMIT: %v", err))
	}

	// Scan cycle
	pollSeconds, err := getEnvAsIntRequired("POLL_INTERVAL_SECONDS", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid POLL_INTERVAL_SECONDS: %v", err))
	} else if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	cooldownMinutes, err := getEnvAsIntRequired("COOLDOWN_MINUTES", 15)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid COOLDOWN_MINUTES: %v", err))
	} else if cooldownMinutes <= 0 {
		errs = append(errs, "COOLDOWN_MINUTES must be positive")
	}
	cfg.Cooldown = time.Duration(cooldownMinutes) * time.Minute

	timeoutSeconds := getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10)
	if timeoutSeconds <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT_SECONDS must be positive")
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	// Detector parameters
	cfg.MinTouches, err = getEnvAsIntRequired("MIN_TOUCHES", 2)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_TOUCHES: %v", err))
	} else if cfg.MinTouches < 2 {
		errs = append(errs, "MIN_TOUCHES must be at least 2")
	}

	cfg.MaxTouchGapMin, err = getEnvAsFloatRequired("MAX_TOUCH_GAP_MIN", 120)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_TOUCH_GAP_MIN: %v", err))
	} else if cfg.MaxTouchGapMin <= 0 {
		errs = append(errs, "MAX_TOUCH_GAP_MIN must be positive")
	}

	cfg.VolumeWindow, err = getEnvAsIntRequired("VOLUME_WINDOW", 20)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid VOLUME_WINDOW: %v", err))
	} else if cfg.VolumeWindow <= 0 {
		errs = append(errs, "VOLUME_WINDOW must be positive")
	}

	// Risk parameters
	cfg.MaxRiskUSD, err = getEnvAsFloatRequired("MAX_RISK_USD", 1.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_RISK_USD: %v", err))
	} else if cfg.MaxRiskUSD <= 0 {
		errs = append(errs, "MAX_RISK_USD must be positive")
	}

	cfg.MinRRRatio, err = getEnvAsFloatRequired("MIN_RR_RATIO", 3.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_RR_RATIO: %v", err))
	} else if cfg.MinRRRatio <= 0 {
		errs = append(errs, "MIN_RR_RATIO must be positive")
	}

	cfg.SafetyBuffer, err = getEnvAsFloatRequired("SAFETY_BUFFER", 0.005)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SAFETY_BUFFER: %v", err))
	} else if cfg.SafetyBuffer <= 0 || cfg.SafetyBuffer >= 1.0 {
		errs = append(errs, "SAFETY_BUFFER must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.MaxLeverage, err = getEnvAsIntRequired("MAX_LEVERAGE", 100)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_LEVERAGE: %v", err))
	} else if cfg.MaxLeverage < 1 {
		errs = append(errs, "MAX_LEVERAGE must be at least 1")
	}

	cfg.MaxPositionSize, err = getEnvAsFloatRequired("MAX_POSITION_SIZE", 1000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_POSITION_SIZE: %v", err))
	} else if cfg.MaxPositionSize <= 0 {
		errs = append(errs, "MAX_POSITION_SIZE must be positive")
	}

	cfg.StopLookback, err = getEnvAsIntRequired("STOP_LOOKBACK", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STOP_LOOKBACK: %v", err))
	} else if cfg.StopLookback <= 0 {
		errs = append(errs, "STOP_LOOKBACK must be positive")
	}

	cfg.FallbackTargetPct, err = getEnvAsFloatRequired("FALLBACK_TARGET_PCT", 0.03)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FALLBACK_TARGET_PCT: %v", err))
	} else if cfg.FallbackTargetPct <= 0 || cfg.FallbackTargetPct >= 1.0 {
		errs = append(errs, "FALLBACK_TARGET_PCT must be between 0.0 and 1.0 (exclusive)")
	}

	// The window must hold the volume average, the stop lookback and interior touches
	minLimit := max(cfg.VolumeWindow, cfg.StopLookback+1, 3)
	if cfg.CandleLimit < minLimit {
		errs = append(errs, fmt.Sprintf("CANDLE_LIMIT must be at least %d", minLimit))
	}

	// Telegram (notifier is disabled when either value is empty)
	cfg.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/signals.db")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFile = getEnv("LOG_FILE", "")

	// Metrics
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
