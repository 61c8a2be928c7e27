// Package metrics holds the Prometheus collectors recorded by the advisor service and API.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fxadvisor"

// AdvisorMetrics groups every collector. Each instance registers on its own registry so
// tests and embedded clients do not collide with the global one.
type AdvisorMetrics struct {
	Registry *prometheus.Registry

	// Decisions by recommended action of the best strategy; "NONE" when nothing was eligible
	DecisionsTotal   *prometheus.CounterVec
	DecisionDuration *prometheus.HistogramVec
	EligibleChannels prometheus.Histogram

	// Rates
	RateLookupsTotal *prometheus.CounterVec
	RateRefreshTotal *prometheus.CounterVec
	RefreshLeader    prometheus.Gauge

	// Errors by type
	ErrorsTotal *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func NewAdvisorMetrics() *AdvisorMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &AdvisorMetrics{
		Registry: reg,

		DecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Number of strategy decisions by recommended action",
			},
			[]string{"action", "pair"},
		),

		DecisionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decision_duration_seconds",
				Help:      "Time spent producing a decision",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms, 1ms, 2ms...
			},
			[]string{"realtime"},
		),

		EligibleChannels: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "eligible_channels",
				Help:      "Channels left after filtering",
				Buckets:   prometheus.LinearBuckets(0, 1, 8),
			},
		),

		RateLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_lookups_total",
				Help:      "Rate lookups by source (live or fallback)",
			},
			[]string{"source"},
		),

		RateRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_refresh_total",
				Help:      "Background rate refresh runs by outcome",
			},
			[]string{"outcome"},
		),

		RefreshLeader: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "refresh_leader",
				Help:      "1 when this instance holds the refresh leader lock",
			},
		),

		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Errors by type",
			},
			[]string{"type"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// RecordDecision records one Decide call.
func (m *AdvisorMetrics) RecordDecision(action, pair string, eligible int, realtime bool, durationSeconds float64) {
	m.DecisionsTotal.WithLabelValues(action, pair).Inc()
	m.DecisionDuration.WithLabelValues(strconv.FormatBool(realtime)).Observe(durationSeconds)
	m.EligibleChannels.Observe(float64(eligible))
	m.RecordRateLookup(realtime)
}

// RecordNoEligible counts a decision where filtering left nothing; no rate was looked up.
func (m *AdvisorMetrics) RecordNoEligible(pair string) {
	m.DecisionsTotal.WithLabelValues("NONE", pair).Inc()
	m.EligibleChannels.Observe(0)
}

func (m *AdvisorMetrics) RecordRateLookup(realtime bool) {
	source := "fallback"
	if realtime {
		source = "live"
	}
	m.RateLookupsTotal.WithLabelValues(source).Inc()
}

// RecordRefresh classifies a warm-up run as ok, partial or failed.
func (m *AdvisorMetrics) RecordRefresh(warmed int, err error) {
	switch {
	case err == nil:
		m.RateRefreshTotal.WithLabelValues("ok").Inc()
	case warmed > 0:
		m.RateRefreshTotal.WithLabelValues("partial").Inc()
	default:
		m.RateRefreshTotal.WithLabelValues("failed").Inc()
	}
}

func (m *AdvisorMetrics) SetLeader(leader bool) {
	if leader {
		m.RefreshLeader.Set(1)
		return
	}
	m.RefreshLeader.Set(0)
}

func (m *AdvisorMetrics) RecordError(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *AdvisorMetrics) RecordHTTPRequest(route, method string, code int, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(durationSeconds)
}
