package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Envelope channel metrics
	EnvelopeRequests *prometheus.CounterVec

	// Session-state gauges
	WorkspacesTotal prometheus.Gauge
	TabsCached      prometheus.Gauge
	ViewsLive       prometheus.Gauge

	// Event metrics
	EventsPublished *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		EnvelopeRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_envelope_requests_total",
				Help: "Envelope requests by channel and outcome",
			},
			[]string{"channel", "ok"},
		),
		WorkspacesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_workspaces_total",
				Help: "Number of persisted workspaces",
			},
		),
		TabsCached: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_tabs_cached",
				Help: "Number of tabs held in the in-memory cache",
			},
		),
		ViewsLive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_views_live",
				Help: "Number of live view resources",
			},
		),
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_events_published_total",
				Help: "Lifecycle events published, by entity and type",
			},
			[]string{"entity", "type"},
		),
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_ws_connections",
				Help: "Active websocket connections",
			},
		),
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request's outcome
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRequest records an envelope request's outcome
func (m *Metrics) RecordRequest(channel string, ok bool) {
	m.EnvelopeRequests.WithLabelValues(channel, strconv.FormatBool(ok)).Inc()
}

// RecordEvent records a published lifecycle event
func (m *Metrics) RecordEvent(entity, eventType string) {
	m.EventsPublished.WithLabelValues(entity, eventType).Inc()
}

// SetWorkspacesTotal updates the persisted-workspace gauge
func (m *Metrics) SetWorkspacesTotal(count int) {
	m.WorkspacesTotal.Set(float64(count))
}

// SetTabsCached updates the cached-tab gauge
func (m *Metrics) SetTabsCached(count int) {
	m.TabsCached.Set(float64(count))
}

// SetLiveViews updates the live-view gauge
func (m *Metrics) SetLiveViews(count int) {
	m.ViewsLive.Set(float64(count))
}

// ConnectionOpened records a websocket connection being established
func (m *Metrics) ConnectionOpened() {
	m.WSConnections.Inc()
}

// ConnectionClosed records a websocket connection going away
func (m *Metrics) ConnectionClosed() {
	m.WSConnections.Dec()
}
