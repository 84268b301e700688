// Package metrics exposes scanner activity as Prometheus metrics:
//
//	scanner_cycles_total{outcome}         cycles by outcome (signal|no_signal|rejected|fetch_error|cooldown)
//	scanner_rejections_total{reason}      detector and calculator rejections by reason
//	scanner_signals_total                 emitted signals
//	scanner_notification_failures_total   notifier errors
//	scanner_cycle_duration_seconds        wall time of a scan step
//	scanner_last_signal_rr                reward/risk of the most recent signal
//
// Served at /metrics next to /healthz when an address is configured.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"breakoutScanner/internal/domain"
	"breakoutScanner/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements ports.Metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	cycles               *prometheus.CounterVec
	rejections           *prometheus.CounterVec
	signals              prometheus.Counter
	notificationFailures prometheus.Counter
	cycleDuration        prometheus.Histogram
	lastSignalRR         prometheus.Gauge
}

// NewRecorder creates a recorder with all scanner metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_cycles_total",
				Help: "Scan cycles by outcome",
			},
			[]string{"outcome"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_rejections_total",
				Help: "Breakout and sizing rejections by reason",
			},
			[]string{"reason"},
		),
		signals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_signals_total",
			Help: "Trade plans emitted",
		}),
		notificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_notification_failures_total",
			Help: "Notifications the channel did not accept",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_cycle_duration_seconds",
			Help:    "Wall time of one scan step",
			Buckets: prometheus.DefBuckets,
		}),
		lastSignalRR: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_last_signal_rr",
			Help: "Reward/risk ratio of the most recent signal",
		}),
	}
	r.registry.MustRegister(r.cycles, r.rejections, r.signals, r.notificationFailures, r.cycleDuration, r.lastSignalRR)
	return r
}

// ObserveCycle counts a finished step and records its duration.
func (r *Recorder) ObserveCycle(outcome string, d time.Duration) {
	r.cycles.WithLabelValues(outcome).Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// ObserveRejection counts a rejection by reason.
func (r *Recorder) ObserveRejection(reason domain.RejectReason) {
	if reason == domain.ReasonNone {
		return
	}
	r.rejections.WithLabelValues(string(reason)).Inc()
}

// ObserveSignal counts an emitted plan.
func (r *Recorder) ObserveSignal(plan domain.TradePlan) {
	r.signals.Inc()
	r.lastSignalRR.Set(plan.RewardRiskRatio)
}

// ObserveNotificationFailure counts a notifier error.
func (r *Recorder) ObserveNotificationFailure() {
	r.notificationFailures.Inc()
}

// Handler returns the HTTP handler serving /metrics and /healthz.
func (r *Recorder) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve runs the metrics server on addr until ctx is canceled.
func (r *Recorder) Serve(ctx context.Context, addr string, logger ports.Logger) error {
	srv := &http.Server{Addr: addr, Handler: r.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Serving metrics", map[string]interface{}{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, err, "Metrics server failed")
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

var _ ports.Metrics = (*Recorder)(nil)
