// Package metrics exposes flip and purchase counters on a private Prometheus
// registry, optionally served over HTTP.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/j-veylop/coinflip-tui/internal/flip"
	"github.com/j-veylop/coinflip-tui/internal/logger"
)

const namespace = "coinflip"

var shutdownTimeout = 5 * time.Second

// Metrics holds the application collectors.
type Metrics struct {
	registry      *prometheus.Registry
	flipDecisions *prometheus.CounterVec
	flipOutcomes  *prometheus.CounterVec
	purchases     *prometheus.CounterVec
	dailyFlips    prometheus.Gauge
	trialDaysLeft prometheus.Gauge
	pro           prometheus.Gauge
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		flipDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flip_requests_total",
			Help:      "Flip requests by gate decision.",
		}, []string{"decision"}),
		flipOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flip_outcomes_total",
			Help:      "Accepted flips by outcome.",
		}, []string{"result"}),
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_attempts_total",
			Help:      "Purchase, restore and entitlement checks by outcome.",
		}, []string{"kind", "outcome"}),
		dailyFlips: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "daily_flips",
			Help:      "Flips charged against today's cap.",
		}),
		trialDaysLeft: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trial_days_remaining",
			Help:      "Whole trial days remaining.",
		}),
		pro: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pro",
			Help:      "1 when Pro is unlocked.",
		}),
	}

	m.registry.MustRegister(
		m.flipDecisions,
		m.flipOutcomes,
		m.purchases,
		m.dailyFlips,
		m.trialDaysLeft,
		m.pro,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFlip records a decided flip request.
func (m *Metrics) ObserveFlip(_ context.Context, r flip.Result) {
	m.flipDecisions.WithLabelValues(r.Decision.String()).Inc()
	if r.Accepted() {
		m.flipOutcomes.WithLabelValues(string(r.Record.Result)).Inc()
	}
	m.dailyFlips.Set(float64(r.Usage.DailyFlips))
	m.SetEntitlement(r.Entitlement.IsPro, r.Entitlement.TrialDaysRemaining)
}

// RecordPurchase counts a purchase-service call.
func (m *Metrics) RecordPurchase(kind, outcome string) {
	m.purchases.WithLabelValues(kind, outcome).Inc()
}

// SetEntitlement updates the entitlement gauges.
func (m *Metrics) SetEntitlement(pro bool, trialDaysRemaining int) {
	if pro {
		m.pro.Set(1)
	} else {
		m.pro.Set(0)
	}
	m.trialDaysLeft.Set(float64(trialDaysRemaining))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a /metrics listener on addr until ctx is done. An empty addr
// does nothing.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("failed to shut down metrics server", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()
}
