// Package metrics defines the Prometheus collectors of the assistant and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Answer modes recorded by AnswersTotal.
const (
	ModeGrounded = "grounded"
	ModeDegraded = "degraded"
	ModeEmpty    = "empty"
	ModeApology  = "apology"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	WebhookEventsTotal *prometheus.CounterVec
	AnswersTotal       *prometheus.CounterVec
	PipelineLatency    prometheus.Histogram
	CacheHitsTotal     *prometheus.CounterVec
	CacheMissesTotal   *prometheus.CounterVec
	ExportErrorsTotal  *prometheus.CounterVec
	CitationWarnings   prometheus.Counter
	DispatchErrors     prometheus.Counter
}

// New creates the collectors on a private registry so that several
// containers can coexist in one process (tests, CLI).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		WebhookEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "Webhook events by outcome (accepted, self, rejected).",
			},
			[]string{"outcome"},
		),
		AnswersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "answers_total",
				Help: "Replies sent by mode (grounded, degraded, empty, apology).",
			},
			[]string{"mode"},
		),
		PipelineLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipeline_latency_seconds",
				Help:    "End-to-end latency from webhook acceptance to reply.",
				Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
			},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowledge_cache_hits_total",
				Help: "Knowledge cache hits per source.",
			},
			[]string{"source"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowledge_cache_misses_total",
				Help: "Knowledge cache misses per source.",
			},
			[]string{"source"},
		),
		ExportErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowledge_export_errors_total",
				Help: "Failed source exports.",
			},
			[]string{"source"},
		),
		CitationWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "citation_warnings_total",
				Help: "URLs in answers that were not among the supplied documents.",
			},
		),
		DispatchErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_dispatch_errors_total",
				Help: "Failed chat message posts.",
			},
		),
	}

	m.registry.MustRegister(
		m.WebhookEventsTotal,
		m.AnswersTotal,
		m.PipelineLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ExportErrorsTotal,
		m.CitationWarnings,
		m.DispatchErrors,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) WebhookEvent(outcome string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Answer(mode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnswersTotal.WithLabelValues(mode).Inc()
	m.PipelineLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) CacheResult(source string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(source).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) ExportError(source string) {
	if m == nil {
		return
	}
	m.ExportErrorsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) CitationWarning(n int) {
	if m == nil || n == 0 {
		return
	}
	m.CitationWarnings.Add(float64(n))
}

func (m *Metrics) DispatchError() {
	if m == nil {
		return
	}
	m.DispatchErrors.Inc()
}
