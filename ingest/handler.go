package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kafaat/sahool-telemetry/errors"
	"github.com/kafaat/sahool-telemetry/metric"
	"github.com/kafaat/sahool-telemetry/registry"
	"github.com/kafaat/sahool-telemetry/sink"
	"github.com/kafaat/sahool-telemetry/telemetry"
)

// HandlerDeps carries the collaborators a Handler needs. All fields except
// Metrics and Logger are required.
type HandlerDeps struct {
	Normalizer *telemetry.Normalizer
	Registry   *registry.Registry
	Sink       sink.Sink
	Metrics    *metric.Metrics
	Logger     *slog.Logger

	// AutoRegister enables zero-touch onboarding of unknown devices.
	AutoRegister bool

	// TenantID is assigned to devices created through zero-touch onboarding.
	TenantID string

	// PublishTimeout bounds each downstream publish.
	PublishTimeout time.Duration
}

// Handler is the ingestion pipeline for one inbound message: normalize,
// update the device registry, forward downstream. A malformed payload is
// logged and dropped; it never stops the feed.
type Handler struct {
	normalizer     *telemetry.Normalizer
	registry       *registry.Registry
	sink           sink.Sink
	metrics        *metric.Metrics
	logger         *slog.Logger
	autoRegister   bool
	tenantID       string
	publishTimeout time.Duration
}

// NewHandler creates an ingestion handler.
func NewHandler(deps HandlerDeps) (*Handler, error) {
	if deps.Normalizer == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Handler", "NewHandler", "normalizer")
	}
	if deps.Registry == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Handler", "NewHandler", "registry")
	}
	if deps.Sink == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Handler", "NewHandler", "sink")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.PublishTimeout <= 0 {
		deps.PublishTimeout = 5 * time.Second
	}

	return &Handler{
		normalizer:     deps.Normalizer,
		registry:       deps.Registry,
		sink:           deps.Sink,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		autoRegister:   deps.AutoRegister,
		tenantID:       deps.TenantID,
		publishTimeout: deps.PublishTimeout,
	}, nil
}

// HandleMessage ingests one raw payload. Designed to be wired directly as
// an mqttclient.MessageHandler.
func (h *Handler) HandleMessage(topic string, payload []byte) {
	start := time.Now()
	if h.metrics != nil {
		h.metrics.RecordReadingReceived(topicRoot(topic))
	}

	readings, err := h.normalizer.Normalize(payload, topic)
	if err != nil {
		field, _ := errors.IsValidation(err)
		h.logger.Warn("payload dropped",
			"topic", topic,
			"field", field,
			"error", err)
		if h.metrics != nil {
			h.metrics.RecordReadingDropped(field)
		}
		return
	}

	for _, reading := range readings {
		h.ingest(reading)
	}

	if h.metrics != nil {
		h.metrics.RecordProcessingDuration("handle_message", time.Since(start))
	}
}

// ingest applies one normalized reading to the registry and forwards it.
func (h *Handler) ingest(reading telemetry.Reading) {
	if h.autoRegister {
		if _, err := h.registry.AutoRegister(reading.DeviceID, h.tenantID, reading.FieldID, reading.SensorType); err != nil {
			h.logger.Error("auto-register failed",
				"device_id", reading.DeviceID,
				"error", err)
		}
	}

	if err := h.registry.UpdateStatus(reading); err != nil {
		// Unknown device with onboarding disabled: drop rather than forward
		// readings for devices nobody provisioned.
		h.logger.Warn("reading dropped, device not registered",
			"device_id", reading.DeviceID,
			"error", err)
		if h.metrics != nil {
			h.metrics.RecordReadingDropped("device_id")
		}
		return
	}

	if h.metrics != nil {
		h.metrics.RecordReadingNormalized(reading.SensorType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.publishTimeout)
	defer cancel()
	if err := h.sink.Publish(ctx, reading); err != nil {
		h.logger.Error("downstream publish failed",
			"device_id", reading.DeviceID,
			"sensor_type", reading.SensorType,
			"error", err)
		if h.metrics != nil {
			h.metrics.RecordError("handler", errors.Classify(err).String())
		}
		return
	}

	if h.metrics != nil {
		h.metrics.RecordReadingPublished(sink.ReadingSubject(reading.DeviceID))
	}
}

// topicRoot returns the first topic segment for coarse metric labels.
func topicRoot(topic string) string {
	if topic == "" {
		return "none"
	}
	if i := strings.IndexByte(topic, '/'); i > 0 {
		return topic[:i]
	}
	return topic
}
