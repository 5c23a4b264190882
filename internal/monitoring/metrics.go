package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values for invocation metrics
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Invocation metrics
	InvocationsTotal    *prometheus.CounterVec
	InvocationDuration  *prometheus.HistogramVec
	InvocationsInFlight prometheus.Gauge

	// Stage metrics
	StageDuration *prometheus.HistogramVec
	SlowStages    *prometheus.CounterVec

	// Trace export metrics
	FlushesTotal prometheus.Counter
	FlushErrors  prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests    int64
	TotalErrors      int64
	TotalInvocations int64
	InvocationErrors int64
	InFlight         int64
	TotalDuration    float64 // sum of all invocation durations
	InvocationCount  int64   // count for averaging
}

// NewMetrics creates a metrics collector on the default registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a metrics collector on a specific registerer
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docproc_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docproc_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docproc_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docproc_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Invocation metrics
		InvocationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docproc_invocations_total",
				Help: "Total number of function invocations",
			},
			[]string{"operation", "status"},
		),
		InvocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docproc_invocation_duration_seconds",
				Help:    "Function invocation duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		InvocationsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "docproc_invocations_in_flight",
				Help: "Number of invocations currently being processed",
			},
		),

		// Stage metrics
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docproc_stage_duration_seconds",
				Help:    "Processing stage duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"stage"},
		),
		SlowStages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docproc_slow_stages_total",
				Help: "Total number of stages that hit the slow path",
			},
			[]string{"stage"},
		),

		// Trace export metrics
		FlushesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docproc_trace_flushes_total",
				Help: "Total number of trace flushes",
			},
		),
		FlushErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docproc_trace_flush_errors_total",
				Help: "Total number of failed trace flushes",
			},
		),

		// System metrics
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "docproc_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordInvocation records a completed function invocation
func (m *Metrics) RecordInvocation(operation, status string, duration time.Duration) {
	m.InvocationsTotal.WithLabelValues(operation, status).Inc()
	m.InvocationDuration.WithLabelValues(operation).Observe(duration.Seconds())

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalInvocations++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.InvocationCount++
	if status != StatusSuccess {
		m.snapshot.InvocationErrors++
	}
	m.mu.Unlock()
}

// RecordStage records a processing stage duration
func (m *Metrics) RecordStage(stage string, duration time.Duration, slow bool) {
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if slow {
		m.SlowStages.WithLabelValues(stage).Inc()
	}
}

// RecordFlush records a trace flush attempt
func (m *Metrics) RecordFlush(err error) {
	m.FlushesTotal.Inc()
	if err != nil {
		m.FlushErrors.Inc()
	}
}

// IncInFlight increments the in-flight invocation gauge
func (m *Metrics) IncInFlight() {
	m.InvocationsInFlight.Inc()
	m.mu.Lock()
	m.snapshot.InFlight++
	m.mu.Unlock()
}

// DecInFlight decrements the in-flight invocation gauge
func (m *Metrics) DecInFlight() {
	m.InvocationsInFlight.Dec()
	m.mu.Lock()
	m.snapshot.InFlight--
	m.mu.Unlock()
}

// GetSnapshot returns the current metric values
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
