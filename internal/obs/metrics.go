package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the client's collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiInFlight    prometheus.Gauge
	apiRequests    *prometheus.CounterVec
	apiDuration    *prometheus.HistogramVec
	hookFetches    *prometheus.CounterVec
	hookDiscarded  *prometheus.CounterVec
	serverRequests *prometheus.CounterVec
	serverDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "healthflow",
			Name:      "api_in_flight_requests",
			Help:      "Outbound API requests currently in flight.",
		}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthflow",
			Name:      "api_requests_total",
			Help:      "Outbound API requests by endpoint and status.",
		}, []string{"method", "endpoint", "status"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthflow",
			Name:      "api_request_duration_seconds",
			Help:      "Outbound API request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		hookFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthflow",
			Name:      "hook_fetches_total",
			Help:      "Data hook fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		hookDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthflow",
			Name:      "hook_stale_results_total",
			Help:      "Fetch results dropped because a newer fetch was issued or the hook was closed.",
		}, []string{"resource"}),
		serverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthflow_mock",
			Name:      "http_requests_total",
			Help:      "Requests served by the mock API.",
		}, []string{"method", "path", "status"}),
		serverDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthflow_mock",
			Name:      "http_request_duration_seconds",
			Help:      "Mock API latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiInFlight, m.apiRequests, m.apiDuration,
		m.hookFetches, m.hookDiscarded,
		m.serverRequests, m.serverDuration,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// APIStart marks an outbound request in flight and returns the function that records
// its outcome. status 0 means the transport failed.
func (m *Metrics) APIStart(method, path string) func(status int) {
	if m == nil {
		return func(int) {}
	}
	endpoint := CanonicalPath(path)
	start := time.Now()
	m.apiInFlight.Inc()
	return func(status int) {
		m.apiInFlight.Dec()
		label := "error"
		if status > 0 {
			label = strconv.Itoa(status)
		}
		m.apiRequests.WithLabelValues(method, endpoint, label).Inc()
		m.apiDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// HookFetch counts a completed fetch; outcome is "success" or "error".
func (m *Metrics) HookFetch(resource, outcome string) {
	if m == nil {
		return
	}
	m.hookFetches.WithLabelValues(resource, outcome).Inc()
}

func (m *Metrics) HookDiscarded(resource string) {
	if m == nil {
		return
	}
	m.hookDiscarded.WithLabelValues(resource).Inc()
}

// Instrument wraps a server handler, recording status and latency per canonical path.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := CanonicalPath(r.URL.Path)
		m.serverRequests.WithLabelValues(r.Method, path, strconv.Itoa(sw.code)).Inc()
		m.serverDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// collections whose second segment is an identifier unless it names a sub-resource
var subResources = map[string]map[string]bool{
	"facilities": {"stats": true},
	"alerts":     {"stats": true},
}

// CanonicalPath collapses identifiers so metric label cardinality stays bounded.
// It accepts paths with or without the API base prefix and drops the query string.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		subs, ok := subResources[parts[i]]
		if !ok {
			continue
		}
		if !subs[parts[i+1]] {
			parts[i+1] = ":id"
		}
		break
	}
	return "/" + strings.Join(parts, "/")
}
