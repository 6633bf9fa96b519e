package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream request outcomes
const (
	OutcomeOK          = "ok"
	OutcomeNetwork     = "network"
	OutcomeRateLimited = "rate_limited"
	OutcomeServer      = "server_error"
	OutcomeClient      = "client_error"
	OutcomeMalformed   = "malformed"
)

// Collectors are registered once, at package init, on the default registry
// ⭐ SSOT: every prometheus collector of the service lives here
var (
	upstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aktietipset",
			Subsystem: "upstream",
			Name:      "attempts_total",
			Help:      "Outbound market data attempts by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aktietipset",
			Subsystem: "upstream",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of outbound market data attempts",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aktietipset",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "TTL cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aktietipset",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "HTTP API requests by route, method and status class",
		},
		[]string{"route", "method", "class"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aktietipset",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP API request duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	jobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aktietipset",
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by job and result",
		},
		[]string{"job", "result"},
	)
)

// RecordUpstreamAttempt records one outbound attempt
func RecordUpstreamAttempt(endpoint, outcome string, d time.Duration) {
	upstreamAttempts.WithLabelValues(endpoint, outcome).Inc()
	upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordHTTPRequest records one served API request
func RecordHTTPRequest(route, method string, status int, d time.Duration) {
	httpRequests.WithLabelValues(route, method, StatusClass(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RecordJobRun records a scheduled job execution
func RecordJobRun(job string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	jobRuns.WithLabelValues(job, result).Inc()
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// StatusClass buckets an HTTP status code
func StatusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
