package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates the Prometheus instrumentation of the
// portal: HTTP traffic, dashboard cache effectiveness and the
// background maintenance jobs.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	jobRuns         *prometheus.CounterVec
	jobFailures     *prometheus.CounterVec
	remindersQueued prometheus.Counter
}

// NewMetricsService registers the portal collectors.
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_hits_total",
		Help: "Total dashboard cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_misses_total",
		Help: "Total dashboard cache misses",
	})

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_job_runs_total",
		Help: "Total scheduled job runs",
	}, []string{"job"})

	jobFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_job_failures_total",
		Help: "Total scheduled job runs that returned an error or panicked",
	}, []string{"job"})

	remindersQueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_reminders_queued_total",
		Help: "Total assignment reminder jobs enqueued",
	})

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requestDuration,
		requestTotal,
		cacheHits,
		cacheMisses,
		jobRuns,
		jobFailures,
		remindersQueued,
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		jobRuns:         jobRuns,
		jobFailures:     jobFailures,
		remindersQueued: remindersQueued,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// RecordRequest captures one served HTTP request.
func (s *MetricsService) RecordRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestTotal.WithLabelValues(labels...).Inc()
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
}

// RecordCacheLookup captures a dashboard cache hit or miss.
func (s *MetricsService) RecordCacheLookup(hit bool) {
	if hit {
		s.cacheHits.Inc()
		return
	}
	s.cacheMisses.Inc()
}

// RecordJobRun captures a scheduled job run and whether it failed.
func (s *MetricsService) RecordJobRun(job string, failed bool) {
	s.jobRuns.WithLabelValues(job).Inc()
	if failed {
		s.jobFailures.WithLabelValues(job).Inc()
	}
}

// RecordRemindersQueued counts enqueued reminder jobs.
func (s *MetricsService) RecordRemindersQueued(n int) {
	if n > 0 {
		s.remindersQueued.Add(float64(n))
	}
}
