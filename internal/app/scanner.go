package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"breakoutScanner/config"
	"breakoutScanner/internal/domain"
	"breakoutScanner/internal/ports"

	"github.com/google/uuid"
)

// notifyTimeout bounds the best-effort shutdown message, which is sent after
// the run context is already canceled.
const notifyTimeout = 10 * time.Second

// Scanner runs the scan cycle for one instrument: fetch, detect, size, and on
// a valid plan notify and cool down.
type Scanner struct {
	cfg      *config.Config
	logger   ports.Logger
	provider ports.MarketDataProvider
	detector ports.BreakoutDetector
	calc     ports.RiskCalculator
	notifier ports.Notifier
	renderer ports.ChartRenderer    // optional; nil sends text-only signals
	journal  ports.SignalRepository // optional
	metrics  ports.Metrics
	clock    ports.Clock

	// Only the scan loop touches these; State may be read from other goroutines.
	mu            sync.Mutex
	state         domain.ScanState
	cooldownUntil time.Time

	closeOnce sync.Once
}

// Dependencies groups the collaborators injected into a Scanner.
type Dependencies struct {
	Logger   ports.Logger
	Provider ports.MarketDataProvider
	Detector ports.BreakoutDetector
	Calc     ports.RiskCalculator
	Notifier ports.Notifier
	Renderer ports.ChartRenderer
	Journal  ports.SignalRepository
	Metrics  ports.Metrics
	Clock    ports.Clock
}

// NewScanner creates a scanner in the Scanning state.
func NewScanner(cfg *config.Config, deps Dependencies) (*Scanner, error) {
	// Validate dependencies
	if cfg == nil || deps.Logger == nil || deps.Provider == nil || deps.Detector == nil || deps.Calc == nil || deps.Notifier == nil {
		return nil, fmt.Errorf("missing required dependencies for Scanner")
	}
	if cfg.Symbol == "" || cfg.Timeframe == "" {
		return nil, fmt.Errorf("configuration Symbol and Timeframe are required")
	}
	if cfg.PollInterval <= 0 || cfg.Cooldown <= 0 || cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("configuration PollInterval, Cooldown and RequestTimeout must be positive")
	}
	if cfg.CandleLimit < deps.Detector.RequiredDataPoints() {
		return nil, fmt.Errorf("configuration CandleLimit (%d) is below the detector requirement (%d)",
			cfg.CandleLimit, deps.Detector.RequiredDataPoints())
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = RealClock{}
	}

	return &Scanner{
		cfg:      cfg,
		logger:   deps.Logger,
		provider: deps.Provider,
		detector: deps.Detector,
		calc:     deps.Calc,
		notifier: deps.Notifier,
		renderer: deps.Renderer,
		journal:  deps.Journal,
		metrics:  metrics,
		clock:    clock,
		state:    domain.StateScanning,
	}, nil
}

// State returns the current controller state.
func (s *Scanner) State() domain.ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CooldownUntil returns the end of the current cooldown, or the zero time while scanning.
func (s *Scanner) CooldownUntil() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateCooldown {
		return time.Time{}
	}
	return s.cooldownUntil
}

// Run sends the startup notification and cycles until ctx is canceled or a
// fatal error occurs. Every exit path sends the shutdown notification and
// releases the market data provider exactly once.
func (s *Scanner) Run(ctx context.Context) (err error) {
	s.logger.Info(ctx, "Starting breakout scanner...", map[string]interface{}{
		"symbol":       s.cfg.Symbol,
		"interval":     s.cfg.Timeframe,
		"pollInterval": s.cfg.PollInterval.String(),
		"cooldown":     s.cfg.Cooldown.String(),
	})
	s.sendText(ctx, startupMessage(s.cfg.Symbol, s.cfg.Timeframe))

	defer func() {
		s.shutdown(err)
	}()

	for {
		if ctx.Err() != nil {
			s.logger.Info(ctx, "Context cancelled, stopping scanner")
			return nil
		}

		wait, stepErr := s.Step(ctx)
		if stepErr != nil {
			if ctx.Err() != nil {
				s.logger.Info(ctx, "Context cancelled during cycle, stopping scanner")
				return nil
			}
			s.logger.Error(ctx, stepErr, "Fatal error in scan cycle, stopping scanner")
			return stepErr
		}

		if err := s.clock.Sleep(ctx, wait); err != nil {
			s.logger.Info(ctx, "Context cancelled while waiting, stopping scanner")
			return nil
		}
	}
}

// shutdown sends the shutdown notification and closes the provider once.
func (s *Scanner) shutdown(cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	s.sendText(ctx, shutdownMessage(s.cfg.Symbol, cause))

	s.closeOnce.Do(func() {
		if err := s.provider.Close(); err != nil {
			s.logger.Error(ctx, err, "Failed to close market data provider")
			return
		}
		s.logger.Info(ctx, "Market data provider closed")
	})
	s.logger.Info(ctx, "Breakout scanner stopped.")
}

// Step performs one state machine transition and returns how long to wait
// before the next one. A non-nil error is fatal and ends the run.
func (s *Scanner) Step(ctx context.Context) (wait time.Duration, err error) {
	start := s.clock.Now()

	s.mu.Lock()
	if s.state == domain.StateCooldown {
		if remaining := s.cooldownUntil.Sub(start); remaining > 0 {
			s.mu.Unlock()
			s.metrics.ObserveCycle(ports.OutcomeCooldown, 0)
			return remaining, nil
		}
		s.state = domain.StateScanning
		s.cooldownUntil = time.Time{}
		s.mu.Unlock()
		s.logger.Info(ctx, "Cooldown finished, resuming scan")
	} else {
		s.mu.Unlock()
	}

	outcome := ports.OutcomeNoSignal
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during scan cycle: %v", ports.ErrUnknown, r)
			wait = 0
			return
		}
		s.metrics.ObserveCycle(outcome, s.clock.Now().Sub(start))
	}()

	outcome, wait, err = s.scan(ctx)
	return wait, err
}

// scan runs fetch, detect and size for the Scanning state.
func (s *Scanner) scan(ctx context.Context) (string, time.Duration, error) {
	poll := s.cfg.PollInterval

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	series, err := s.provider.GetKlines(fetchCtx, s.cfg.Symbol, s.cfg.Timeframe, s.cfg.CandleLimit)
	cancel()
	if err != nil {
		return s.providerFailure(ctx, err, "Failed to fetch klines")
	}
	if err := series.Validate(); err != nil {
		err = fmt.Errorf("validate series: %w: %w", ports.ErrMalformedData, err)
		s.logger.Warn(ctx, "Discarding malformed series", map[string]interface{}{"error": err.Error()})
		return ports.OutcomeFetchError, poll, nil
	}

	detection := s.detector.Detect(series)
	if !detection.Signaled() {
		s.logger.Debug(ctx, "No breakout", map[string]interface{}{
			"reason":  string(detection.Reason),
			"touches": len(detection.Touches),
			"candles": series.Len(),
		})
		s.metrics.ObserveRejection(detection.Reason)
		return ports.OutcomeNoSignal, poll, nil
	}
	s.logger.Info(ctx, "Breakout detected", map[string]interface{}{
		"index":   detection.Breakout.Index,
		"touches": len(detection.Touches),
		"close":   series.Candles[detection.Breakout.Index].Close,
	})

	decision := s.calc.Calculate(series, detection.Breakout.Index)
	if !decision.Accepted() {
		s.logger.Info(ctx, "Breakout rejected by risk policy", map[string]interface{}{"reason": string(decision.Reason)})
		s.metrics.ObserveRejection(decision.Reason)
		return ports.OutcomeRejected, poll, nil
	}
	plan := *decision.Plan
	if !plan.Valid() {
		reason := domain.ReasonLiquidationBeyond
		if plan.PositionSize <= 0 {
			reason = domain.ReasonZeroPositionSize
		}
		s.logger.Warn(ctx, "Plan failed the final acceptance gate", map[string]interface{}{
			"reason":           string(reason),
			"stopLoss":         plan.StopLoss,
			"liquidationPrice": plan.LiquidationPrice,
			"positionSize":     plan.PositionSize,
		})
		s.metrics.ObserveRejection(reason)
		return ports.OutcomeRejected, poll, nil
	}

	priceCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	lastPrice, err := s.provider.GetLastPrice(priceCtx, s.cfg.Symbol)
	cancel()
	if err != nil {
		return s.providerFailure(ctx, err, "Failed to fetch last price")
	}

	sig := &domain.Signal{
		ID:        uuid.NewString(),
		Symbol:    s.cfg.Symbol,
		Interval:  s.cfg.Timeframe,
		Plan:      plan,
		LastPrice: lastPrice,
		CreatedAt: s.clock.Now(),
	}
	s.emit(ctx, series, detection, sig)

	s.mu.Lock()
	s.state = domain.StateCooldown
	s.cooldownUntil = sig.CreatedAt.Add(s.cfg.Cooldown)
	s.mu.Unlock()

	s.logger.Info(ctx, "Signal emitted, entering cooldown", map[string]interface{}{
		"signalID":      sig.ID,
		"entry":         plan.EntryPrice,
		"stopLoss":      plan.StopLoss,
		"takeProfit":    plan.TakeProfit,
		"liquidation":   plan.LiquidationPrice,
		"leverage":      plan.Leverage,
		"positionSize":  plan.PositionSize,
		"rr":            plan.RewardRiskRatio,
		"cooldownUntil": sig.CreatedAt.Add(s.cfg.Cooldown).Format(time.RFC3339),
	})
	return ports.OutcomeSignal, s.cfg.Cooldown, nil
}

// providerFailure classifies a market data error: fatal errors stop the run,
// everything else waits for the next poll.
func (s *Scanner) providerFailure(ctx context.Context, err error, msg string) (string, time.Duration, error) {
	if ports.IsFatal(err) {
		return ports.OutcomeFetchError, 0, err
	}
	if ctx.Err() != nil {
		return ports.OutcomeFetchError, 0, ctx.Err()
	}
	s.logger.Warn(ctx, msg, map[string]interface{}{"error": err.Error(), "retryIn": s.cfg.PollInterval.String()})
	return ports.OutcomeFetchError, s.cfg.PollInterval, nil
}

// emit renders, notifies and journals a signal. None of these can fail the cycle.
func (s *Scanner) emit(ctx context.Context, series domain.CandleSeries, detection domain.Detection, sig *domain.Signal) {
	caption := signalCaption(sig)

	var image []byte
	if s.renderer != nil && detection.Trendline != nil {
		img, err := s.renderer.Render(series, *detection.Trendline, sig.Plan, ChartTitle(sig.Symbol, sig.Interval, sig.Plan))
		if err != nil {
			s.logger.Warn(ctx, "Chart rendering failed, sending text only", map[string]interface{}{"error": err.Error()})
		} else {
			image = img
		}
	}

	var err error
	if image != nil {
		err = s.notifier.SendImage(ctx, image, caption)
	} else {
		err = s.notifier.SendText(ctx, caption)
	}
	if err != nil {
		s.logger.Error(ctx, err, "Failed to deliver signal notification", map[string]interface{}{"signalID": sig.ID})
		s.metrics.ObserveNotificationFailure()
	} else {
		sig.Notified = true
	}

	s.metrics.ObserveSignal(sig.Plan)

	if s.journal == nil {
		return
	}
	if _, err := s.journal.SaveSignal(ctx, sig); err != nil {
		s.logger.Error(ctx, err, "Failed to journal signal", map[string]interface{}{"signalID": sig.ID})
	}
}

// sendText delivers a best-effort operator message.
func (s *Scanner) sendText(ctx context.Context, msg string) {
	if err := s.notifier.SendText(ctx, msg); err != nil {
		if !errors.Is(err, context.Canceled) {
			s.metrics.ObserveNotificationFailure()
		}
		s.logger.Error(ctx, err, "Failed to send notification")
	}
}

type noopMetrics struct{}

func (noopMetrics) ObserveCycle(string, time.Duration)   {}
func (noopMetrics) ObserveRejection(domain.RejectReason) {}
func (noopMetrics) ObserveSignal(domain.TradePlan)       {}
func (noopMetrics) ObserveNotificationFailure()          {}
