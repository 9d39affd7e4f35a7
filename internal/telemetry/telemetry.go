// Package telemetry provides Prometheus metrics and OpenTelemetry tracing for
// the triage service.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "triage"

// Metrics holds the triage Prometheus collectors.
type Metrics struct {
	// Triage metrics
	TriagesTotal   *prometheus.CounterVec
	TriageFailures *prometheus.CounterVec
	TriageDuration prometheus.Histogram
	PriorityScore  prometheus.Histogram

	// Oracle metrics
	OracleDuration *prometheus.HistogramVec
	BreakerState   prometheus.Gauge

	// Session metrics
	ResultsLogged *prometheus.CounterVec
	SessionSize   prometheus.Gauge
	BatchSize     prometheus.Histogram
}

// Provider wraps the tracer and metrics.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	gatherer prometheus.Gatherer
}

// NewProvider registers all collectors on reg. A nil reg gets a fresh
// registry, which keeps repeated construction in tests from colliding.
func NewProvider(reg *prometheus.Registry) *Provider {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		gatherer: reg,
	}
}

// Handler serves the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		TriagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_complaints_total",
			Help: "Complaints triaged, by category and threat flag",
		}, []string{"category", "threat"}),
		TriageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_failures_total",
			Help: "Triage calls that returned an error, by reason",
		}, []string{"reason"}),
		TriageDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_duration_seconds",
			Help:    "Time to triage a single complaint, oracle call included",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		PriorityScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_priority_score",
			Help:    "Distribution of assigned priority scores",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		OracleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triage_oracle_duration_seconds",
			Help:    "Toxicity oracle latency by outcome",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}),
		BreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "triage_oracle_breaker_state",
			Help: "Oracle circuit breaker state (0 closed, 1 open, 2 half-open)",
		}),
		ResultsLogged: f.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_results_logged_total",
			Help: "Results offered to the session log, by whether they were retained",
		}, []string{"retained"}),
		SessionSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "triage_session_log_size",
			Help: "Entries currently in the session result log",
		}),
		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_batch_size",
			Help:    "Complaints per batch request",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		}),
	}
}

// RecordTriage records a successful triage.
func (p *Provider) RecordTriage(_ context.Context, category string, priority int, threat bool, d time.Duration) {
	p.Metrics.TriagesTotal.WithLabelValues(category, strconv.FormatBool(threat)).Inc()
	p.Metrics.PriorityScore.Observe(float64(priority))
	p.Metrics.TriageDuration.Observe(d.Seconds())
}

// RecordTriageFailure records a failed triage.
func (p *Provider) RecordTriageFailure(_ context.Context, reason string) {
	p.Metrics.TriageFailures.WithLabelValues(reason).Inc()
}

// RecordOracleCall records oracle latency with "success" or "error" outcome.
func (p *Provider) RecordOracleCall(_ context.Context, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.Metrics.OracleDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// SetBreakerState publishes the breaker state as a number.
func (p *Provider) SetBreakerState(state int) {
	p.Metrics.BreakerState.Set(float64(state))
}

// RecordLogged records a session log append attempt.
func (p *Provider) RecordLogged(retained bool, size int) {
	p.Metrics.ResultsLogged.WithLabelValues(strconv.FormatBool(retained)).Inc()
	p.Metrics.SessionSize.Set(float64(size))
}

// SetSessionSize sets the session log gauge.
func (p *Provider) SetSessionSize(size int) {
	p.Metrics.SessionSize.Set(float64(size))
}

// RecordBatchSize records the size of a batch request.
func (p *Provider) RecordBatchSize(size int) {
	p.Metrics.BatchSize.Observe(float64(size))
}

// StartSpan starts a span; the caller ends it.
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
