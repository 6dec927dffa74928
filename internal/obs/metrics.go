package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for the flight pipeline. All
// methods are nil-safe so components can run without observability wired in
// (tests, cache-disabled deployments).
type Metrics struct {
	SearchesTotal    prometheus.Counter
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	TokenRefreshes   prometheus.Counter
	UpstreamRetries  prometheus.Counter
	UpstreamErrors   *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	Registry         *prometheus.Registry
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		SearchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flight_searches_total",
			Help: "Total flight search requests accepted",
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flight_result_cache_hits_total",
			Help: "Follow-up requests served from the result cache",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flight_result_cache_misses_total",
			Help: "Follow-up requests whose cached results were gone or expired",
		}),
		TokenRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flight_provider_token_refreshes_total",
			Help: "Credential exchanges performed against the flight provider",
		}),
		UpstreamRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flight_provider_retries_total",
			Help: "Retried attempts against the flight provider",
		}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flight_provider_errors_total",
			Help: "Failed flight provider calls by class",
		}, []string{"class"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flight_provider_latency_seconds",
			Help:    "Latency of flight provider calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Registry: reg,
	}

	reg.MustRegister(
		m.SearchesTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.TokenRefreshes,
		m.UpstreamRetries,
		m.UpstreamErrors,
		m.UpstreamLatency,
	)

	return m
}

// Handler exposes the registry for mounting on /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncSearches() {
	if m != nil {
		m.SearchesTotal.Inc()
	}
}

func (m *Metrics) IncCacheHits() {
	if m != nil {
		m.CacheHitsTotal.Inc()
	}
}

func (m *Metrics) IncCacheMisses() {
	if m != nil {
		m.CacheMissesTotal.Inc()
	}
}

func (m *Metrics) IncTokenRefreshes() {
	if m != nil {
		m.TokenRefreshes.Inc()
	}
}

func (m *Metrics) IncUpstreamRetries() {
	if m != nil {
		m.UpstreamRetries.Inc()
	}
}

func (m *Metrics) IncUpstreamErrors(class string) {
	if m != nil {
		m.UpstreamErrors.WithLabelValues(class).Inc()
	}
}

func (m *Metrics) ObserveUpstreamLatency(endpoint string, seconds float64) {
	if m != nil {
		m.UpstreamLatency.WithLabelValues(endpoint).Observe(seconds)
	}
}
