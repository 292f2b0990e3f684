package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "esfiddle"

// Metrics holds the counters the engine reports. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	saves          prometheus.Counter
	saveFailures   prometheus.Counter
	coalescedEdits prometheus.Counter
	retryAttempts  *prometheus.CounterVec
	retryExhausted *prometheus.CounterVec
}

// NewMetrics registers the counters on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Files written to the local store.",
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_failures_total",
			Help:      "Writes to the local store that failed.",
		}),
		coalescedEdits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coalesced_edits_total",
			Help:      "Edits absorbed by a later edit in the same debounce window.",
		}),
		retryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_failed_attempts_total",
			Help:      "Failed attempts of retried network calls.",
		}, []string{"op"}),
		retryExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_exhausted_total",
			Help:      "Network calls that failed after every attempt.",
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		m.saves,
		m.saveFailures,
		m.coalescedEdits,
		m.retryAttempts,
		m.retryExhausted,
	)
	return m
}

// SaveSucceeded counts a stored autosave. All methods are no-ops on a nil *Metrics.
func (m *Metrics) SaveSucceeded() {
	if m != nil {
		m.saves.Inc()
	}
}

// SaveFailed counts an autosave the repository rejected
func (m *Metrics) SaveFailed() {
	if m != nil {
		m.saveFailures.Inc()
	}
}

// EditCoalesced counts an edit that replaced one still waiting to be saved
func (m *Metrics) EditCoalesced() {
	if m != nil {
		m.coalescedEdits.Inc()
	}
}

// RetryAttemptFailed counts one failed attempt of a retried remote call
func (m *Metrics) RetryAttemptFailed(op string) {
	if m != nil {
		m.retryAttempts.WithLabelValues(op).Inc()
	}
}

// RetryExhausted counts a remote call that used up its attempts
func (m *Metrics) RetryExhausted(op string) {
	if m != nil {
		m.retryExhausted.WithLabelValues(op).Inc()
	}
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns a mux serving /metrics and /health
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve runs the metrics server on addr until ctx is canceled
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("metrics server failed", zap.Error(err))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
