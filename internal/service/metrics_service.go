package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the timetable generator.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	generationRuns     *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	scheduledTotal     *prometheus.CounterVec
	unschedulableTotal *prometheus.CounterVec
	conflictRejections prometheus.Counter
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	generationRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generation_runs_total",
		Help: "Total schedule generation runs",
	}, []string{"strategy"})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "Duration of schedule generation runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	scheduledTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generation_scheduled_total",
		Help: "Courses placed by generation runs",
	}, []string{"strategy"})

	unschedulableTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generation_unschedulable_total",
		Help: "Courses left unplaced by generation runs",
	}, []string{"reason"})

	conflictRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_conflict_rejections_total",
		Help: "Manual schedule creations rejected for conflicts",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, generationRuns, generationDuration,
		scheduledTotal, unschedulableTotal, conflictRejections, cacheHits, cacheMisses, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		generationRuns:     generationRuns,
		generationDuration: generationDuration,
		scheduledTotal:     scheduledTotal,
		unschedulableTotal: unschedulableTotal,
		conflictRejections: conflictRejections,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveGenerationRun records the outcome of one generation run.
func (m *MetricsService) ObserveGenerationRun(strategy string, scheduled int, unschedulableByReason map[string]int, duration time.Duration) {
	if m == nil {
		return
	}
	m.generationRuns.WithLabelValues(strategy).Inc()
	m.generationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	m.scheduledTotal.WithLabelValues(strategy).Add(float64(scheduled))
	for reason, count := range unschedulableByReason {
		m.unschedulableTotal.WithLabelValues(reason).Add(float64(count))
	}
}

// RecordConflictRejection counts a manual creation rejected for a conflict.
func (m *MetricsService) RecordConflictRejection() {
	if m == nil {
		return
	}
	m.conflictRejections.Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
