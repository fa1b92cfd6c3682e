package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the desk.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	storeWrites     *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	syncPending     *prometheus.GaugeVec
	recomputes      prometheus.Counter
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desk_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_store_errors_total",
				Help: "Total failed store operations.",
			},
			[]string{"backend", "collection"},
		),
		storeWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_store_writes_total",
				Help: "Total successful collection writes.",
			},
			[]string{"backend", "collection"},
		),
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_mutations_total",
				Help: "Total accepted mutations by action.",
			},
			[]string{"action"},
		),
		syncPending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "desk_sync_pending",
				Help: "1 while a collection has unsaved changes.",
			},
			[]string{"collection"},
		),
		recomputes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desk_commission_recomputes_total",
				Help: "Total full commission recomputations.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the store error counter.
func (m *Metrics) IncrStoreError(backend, collection string) {
	m.storeErrors.WithLabelValues(backend, collection).Inc()
}

// IncrStoreWrite increments the successful write counter.
func (m *Metrics) IncrStoreWrite(backend, collection string) {
	m.storeWrites.WithLabelValues(backend, collection).Inc()
}

// IncrMutation counts one accepted mutation.
func (m *Metrics) IncrMutation(action string) {
	m.mutations.WithLabelValues(action).Inc()
}

// SetSyncPending flags a collection as dirty or clean.
func (m *Metrics) SetSyncPending(collection string, pending bool) {
	v := 0.0
	if pending {
		v = 1
	}
	m.syncPending.WithLabelValues(collection).Set(v)
}

// IncrRecompute counts one full commission recomputation.
func (m *Metrics) IncrRecompute() {
	m.recomputes.Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// MutationCount returns the cumulative count for one action. Used by the
// sync status endpoint and tests.
func (m *Metrics) MutationCount(action string) float64 {
	return getCounterValue(m.mutations, action)
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
