package metrics

import (
	"errors"
	"net/http"

	"tariff-compare/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several instances (tests, multiple servers) never collide.
type Metrics struct {
	registry *prometheus.Registry

	Comparisons  *prometheus.CounterVec
	Reports      *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.Comparisons = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tariff_comparisons_total",
		Help: "Comparisons processed, by outcome (ok, invalid, error).",
	}, []string{"outcome"})
	m.Reports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tariff_reports_total",
		Help: "Reports rendered, by format and outcome (ok, invalid, error).",
	}, []string{"format", "outcome"})
	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tariff_http_requests_total",
		Help: "HTTP requests, by route, method and status code.",
	}, []string{"route", "method", "code"})
	m.HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tariff_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Comparisons,
		m.Reports,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// ObserveComparison counts one comparison. A nil receiver is a no-op so callers
// can run with metrics disabled.
func (m *Metrics) ObserveComparison(err error) {
	if m == nil {
		return
	}
	m.Comparisons.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveReport(format string, err error) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(format, outcome(err)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// outcome labels rejected input "invalid" and any other failure "error".
func outcome(err error) string {
	var verr *model.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	default:
		return "error"
	}
}
