package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// scheduling engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	slotGeneration   prometheus.Histogram
	slotCoalesced    prometheus.Counter
	bookingConflicts *prometheus.CounterVec
	conflictFailOpen prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	slotGeneration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "slot_generation_duration_seconds",
		Help:    "Time spent generating availability slots",
		Buckets: prometheus.DefBuckets,
	})

	slotCoalesced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slot_requests_coalesced_total",
		Help: "Availability requests folded into an in-flight computation",
	})

	bookingConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Booking attempts refused by the conflict detector",
	}, []string{"reason"})

	conflictFailOpen := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflict_checks_failed_open_total",
		Help: "Conflict checks that failed open because a read errored",
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits,
		cacheMisses, dbQueryDuration, slotGeneration, slotCoalesced,
		bookingConflicts, conflictFailOpen)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		dbQueryDuration:  dbQueryDuration,
		slotGeneration:   slotGeneration,
		slotCoalesced:    slotCoalesced,
		bookingConflicts: bookingConflicts,
		conflictFailOpen: conflictFailOpen,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordCacheOperation records a cache lookup.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	s.cacheLatency.Observe(duration.Seconds())
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
}

// ObserveDBQuery records one database query.
func (s *MetricsService) ObserveDBQuery(query string, duration time.Duration) {
	s.dbQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// ObserveSlotGeneration records one availability computation.
func (s *MetricsService) ObserveSlotGeneration(duration time.Duration, coalesced bool) {
	s.slotGeneration.Observe(duration.Seconds())
	if coalesced {
		s.slotCoalesced.Inc()
	}
}

// RecordBookingConflict counts a refused booking by reason.
func (s *MetricsService) RecordBookingConflict(reason string) {
	s.bookingConflicts.WithLabelValues(reason).Inc()
}

// RecordConflictFailOpen counts an advisory check degraded by a read error.
func (s *MetricsService) RecordConflictFailOpen() {
	s.conflictFailOpen.Inc()
}
