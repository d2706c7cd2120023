package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics for the ingestion core.
type Metrics struct {
	// Ingestion metrics
	ReadingsReceived   *prometheus.CounterVec
	ReadingsNormalized *prometheus.CounterVec
	ReadingsDropped    *prometheus.CounterVec
	ReadingsPublished  *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
	ErrorsTotal        *prometheus.CounterVec

	// Registry metrics
	DevicesRegistered prometheus.Gauge
	DevicesByStatus   *prometheus.GaugeVec
	OfflineSweeps     prometheus.Counter

	// Broker connection metrics
	BrokerConnected  prometheus.Gauge
	BrokerReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ReadingsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sahool",
				Subsystem: "ingest",
				Name:      "readings_received_total",
				Help:      "Total number of raw payloads received",
			},
			[]string{"topic_root"},
		),

		ReadingsNormalized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sahool",
				Subsystem: "ingest",
				Name:      "readings_normalized_total",
				Help:      "Total number of readings normalized successfully",
			},
			[]string{"sensor_type"},
		),

		ReadingsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sahool",
				Subsystem: "ingest",
				Name:      "readings_dropped_total",
				Help:      "Total number of payloads dropped by validation",
			},
			[]string{"field"},
		),

		ReadingsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sahool",
				Subsystem: "ingest",
				Name:      "readings_published_total",
				Help:      "Total number of readings forwarded downstream",
			},
			[]string{"subject"},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sahool",
				Subsystem: "ingest",
				Name:      "processing_duration_seconds",
				Help:      "Payload processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sahool",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"component", "class"},
		),

		DevicesRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sahool",
				Subsystem: "registry",
				Name:      "devices",
				Help:      "Number of registered devices",
			},
		),

		DevicesByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "sahool",
				Subsystem: "registry",
				Name:      "devices_by_status",
				Help:      "Number of devices per lifecycle status",
			},
			[]string{"status"},
		),

		OfflineSweeps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sahool",
				Subsystem: "registry",
				Name:      "offline_sweeps_total",
				Help:      "Total number of offline sweep runs",
			},
		),

		BrokerConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sahool",
				Subsystem: "mqtt",
				Name:      "connected",
				Help:      "Broker connection status (0=disconnected, 1=connected)",
			},
		),

		BrokerReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sahool",
				Subsystem: "mqtt",
				Name:      "reconnects_total",
				Help:      "Total number of broker reconnections",
			},
		),
	}
}

// RecordReadingReceived increments the raw payload counter
func (c *Metrics) RecordReadingReceived(topicRoot string) {
	c.ReadingsReceived.WithLabelValues(topicRoot).Inc()
}

// RecordReadingNormalized increments the normalized reading counter
func (c *Metrics) RecordReadingNormalized(sensorType string) {
	c.ReadingsNormalized.WithLabelValues(sensorType).Inc()
}

// RecordReadingDropped increments the validation drop counter
func (c *Metrics) RecordReadingDropped(field string) {
	c.ReadingsDropped.WithLabelValues(field).Inc()
}

// RecordReadingPublished increments the downstream publish counter
func (c *Metrics) RecordReadingPublished(subject string) {
	c.ReadingsPublished.WithLabelValues(subject).Inc()
}

// RecordProcessingDuration records payload processing time
func (c *Metrics) RecordProcessingDuration(operation string, duration time.Duration) {
	c.ProcessingDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordError increments the error counter
func (c *Metrics) RecordError(component, class string) {
	c.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// RecordDeviceCount updates the registered device gauge
func (c *Metrics) RecordDeviceCount(total int) {
	c.DevicesRegistered.Set(float64(total))
}

// RecordDevicesByStatus updates the per-status device gauge
func (c *Metrics) RecordDevicesByStatus(status string, count int) {
	c.DevicesByStatus.WithLabelValues(status).Set(float64(count))
}

// RecordOfflineSweep increments the sweep counter
func (c *Metrics) RecordOfflineSweep() {
	c.OfflineSweeps.Inc()
}

// RecordBrokerStatus updates the broker connection gauge
func (c *Metrics) RecordBrokerStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.BrokerConnected.Set(value)
}

// RecordBrokerReconnect increments the reconnection counter
func (c *Metrics) RecordBrokerReconnect() {
	c.BrokerReconnects.Inc()
}
