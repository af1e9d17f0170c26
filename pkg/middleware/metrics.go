package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "urlkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "urlkit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors of one Prometheus middleware.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	codecErrors     *prometheus.CounterVec
	wsSessions      prometheus.Gauge
}

// Collectors are created once per registry; registering them twice panics.
var (
	registered   = map[prometheus.Registerer]*Metrics{}
	registeredMu sync.Mutex
)

func metricsFor(config MetricsConfig) *Metrics {
	registeredMu.Lock()
	defer registeredMu.Unlock()

	if m, ok := registered[config.Registry]; ok {
		return m
	}
	factory := promauto.With(config.Registry)
	m := &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of HTTP requests by route and status code",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		codecErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "codec_errors_total",
			Help:        "Total number of rejected inputs by route and error code",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "error_type"}),

		wsSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "location_sessions",
			Help:        "Number of open WebSocket location sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
	registered[config.Registry] = m
	return m
}

// NewMetrics returns the collectors for the configured registry, creating
// them on first use.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return metricsFor(config)
}

// Prometheus creates middleware that collects request metrics.
//
// Metrics collected:
//   - urlkit_requests_total: Counter of requests by route and status
//   - urlkit_request_duration_seconds: Histogram of request duration by route
//   - urlkit_codec_errors_total: Counter of errors reported with RecordError
//   - urlkit_location_sessions: Gauge of open WebSocket sessions
//
// Expose them with promhttp:
//
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	return NewMetrics(opts...).Handler
}

// Handler is the middleware form of m.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, st := withState(r)
		sw := wrapWriter(w)

		start := time.Now()
		next.ServeHTTP(sw, r)
		duration := time.Since(start).Seconds()

		route := routeOf(r)
		m.requestDuration.WithLabelValues(route).Observe(duration)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(sw.Status())).Inc()
		if st.err != nil {
			m.codecErrors.WithLabelValues(route, errorType(st.err)).Inc()
		}
	})
}

// SessionOpened records a new WebSocket session.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.wsSessions.Inc()
	}
}

// SessionClosed records the end of a WebSocket session.
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.wsSessions.Dec()
	}
}
