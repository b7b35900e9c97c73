package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Categorization sources and outcomes as reported to ObserveCategorization.
const (
	SourceCache = "cache"
	SourceAI    = "ai"
	SourceRules = "rules"

	OutcomeApplied = "applied"
	OutcomeAborted = "aborted"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and for the
// categorization pipeline, on a private registry. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	eventsTracked   prometheus.Counter
	categorizations *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// New constructs a collector with default histograms/counters.
func New() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "timearc",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timearc",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	eventsTracked := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timearc",
		Subsystem: "pipeline",
		Name:      "events_tracked_total",
		Help:      "Total number of activity events recorded by the pipeline.",
	})

	categorizations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timearc",
		Subsystem: "pipeline",
		Name:      "categorizations_total",
		Help:      "Categorization decisions by source and outcome.",
	}, []string{"source", "outcome"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timearc",
		Subsystem: "pipeline",
		Name:      "cache_lookups_total",
		Help:      "Categorization cache lookups by result.",
	}, []string{"result"})

	for _, c := range []prometheus.Collector{requestDuration, requestTotal, eventsTracked, categorizations, cacheLookups} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		eventsTracked:   eventsTracked,
		categorizations: categorizations,
		cacheLookups:    cacheLookups,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// ObserveEventTracked records one recorded activity event.
func (c *Collector) ObserveEventTracked() {
	if c == nil {
		return
	}
	c.eventsTracked.Inc()
}

// ObserveCategorization records one categorization decision.
func (c *Collector) ObserveCategorization(source, outcome string) {
	if c == nil {
		return
	}
	c.categorizations.WithLabelValues(source, outcome).Inc()
}

// ObserveCacheLookup records one cache lookup result.
func (c *Collector) ObserveCacheLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// RegisterQueueGauges exposes live queue depth via callback gauges.
func (c *Collector) RegisterQueueGauges(pending, running func() int) error {
	if c == nil {
		return nil
	}

	pendingGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "timearc",
		Subsystem: "pipeline",
		Name:      "queue_pending",
		Help:      "Categorization jobs waiting for a slot.",
	}, func() float64 { return float64(pending()) })

	runningGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "timearc",
		Subsystem: "pipeline",
		Name:      "queue_running",
		Help:      "Categorization jobs currently executing.",
	}, func() float64 { return float64(running()) })

	if err := c.registry.Register(pendingGauge); err != nil {
		return err
	}
	return c.registry.Register(runningGauge)
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
