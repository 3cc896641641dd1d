package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricHTTPRequestDuration   = "http_request_duration_seconds"
	MetricHTTPRequestsTotal     = "http_requests_total"
	MetricHTTPResponseSizeBytes = "http_response_size_bytes"
	MetricRateLimitBlocked      = "rate_limit_blocked_total"
	MetricRankingSections       = "ranking_sections_total"
	MetricSwipes                = "swipes_total"
)

// Metrics contains Prometheus metrics for the API server. All operations
// are thread-safe.
type Metrics struct {
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpResponseSize    *prometheus.HistogramVec
	rateLimitBlocked    *prometheus.CounterVec
	rankingSections     *prometheus.CounterVec
	swipes              *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1.0, 2.0},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPResponseSizeBytes,
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8), // 100 B to ~100 MB
			},
			[]string{"method", "path", "status"},
		),
		rateLimitBlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRateLimitBlocked,
				Help: "Total number of rate limit violations by endpoint",
			},
			[]string{"endpoint"},
		),
		rankingSections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankingSections,
				Help: "Ranking sections computed, by surface and outcome (served or degraded)",
			},
			[]string{"surface", "outcome"},
		),
		swipes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSwipes,
				Help: "Swipe attempts, by action and outcome (recorded, matched, quota_exceeded)",
			},
			[]string{"action", "outcome"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveHTTPRequest records HTTP request metrics.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration float64, responseSize int64) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": status,
	}
	m.httpRequestDuration.With(labels).Observe(duration)
	m.httpRequestsTotal.With(labels).Inc()
	m.httpResponseSize.With(labels).Observe(float64(responseSize))
}

// IncRateLimitBlocked increments the rate limit blocked counter.
func (m *Metrics) IncRateLimitBlocked(endpoint string) {
	m.rateLimitBlocked.WithLabelValues(endpoint).Inc()
}

// IncRankingSection records one computed ranking section.
// surface: "trending" or "suggestions". outcome: "served" or "degraded".
func (m *Metrics) IncRankingSection(surface, outcome string) {
	m.rankingSections.WithLabelValues(surface, outcome).Inc()
}

// IncSwipe records one swipe attempt.
// action: "like", "super_like", "pass". outcome: "recorded", "matched",
// "quota_exceeded".
func (m *Metrics) IncSwipe(action, outcome string) {
	m.swipes.WithLabelValues(action, outcome).Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestDuration,
		m.httpRequestsTotal,
		m.httpResponseSize,
		m.rateLimitBlocked,
		m.rankingSections,
		m.swipes,
	}
}
