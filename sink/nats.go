package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kafaat/sahool-telemetry/errors"
	"github.com/kafaat/sahool-telemetry/telemetry"
)

const (
	// readingSubjectPrefix is the subject root for forwarded readings. The
	// device ID becomes the final token so consumers can subscribe per
	// device or with a wildcard.
	readingSubjectPrefix = "telemetry.readings"

	// alertSubject carries device lifecycle alerts.
	alertSubject = "telemetry.alerts.device"

	defaultConnectTimeout = 5 * time.Second
)

// NATSSink forwards readings onto NATS subjects.
type NATSSink struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NATSOptions configures the sink connection.
type NATSOptions struct {
	URLs     []string
	Username string
	Password string
	Name     string
	Logger   *slog.Logger
}

// NewNATSSink connects to NATS and returns a sink. The connection reconnects
// indefinitely on its own; a publish during an outage is buffered by the
// library until the connection returns.
func NewNATSSink(opts NATSOptions) (*NATSSink, error) {
	if len(opts.URLs) == 0 {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "NATSSink", "NewNATSSink", "server URLs")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := opts.Name
	if name == "" {
		name = "sahool-telemetry"
	}

	natsOpts := []nats.Option{
		nats.Name(name),
		nats.Timeout(defaultConnectTimeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if opts.Username != "" {
		natsOpts = append(natsOpts, nats.UserInfo(opts.Username, opts.Password))
	}

	conn, err := nats.Connect(strings.Join(opts.URLs, ","), natsOpts...)
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSSink", "NewNATSSink", "connect")
	}

	return &NATSSink{conn: conn, logger: logger}, nil
}

// ReadingSubject returns the subject a reading is published on.
func ReadingSubject(deviceID string) string {
	return fmt.Sprintf("%s.%s", readingSubjectPrefix, sanitizeToken(deviceID))
}

// sanitizeToken makes a device ID safe as a NATS subject token.
func sanitizeToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ':
			return '_'
		}
		return r
	}, s)
}

// Publish forwards one reading to its per-device subject.
func (s *NATSSink) Publish(_ context.Context, reading telemetry.Reading) error {
	data, err := reading.Encode()
	if err != nil {
		return errors.WrapInvalid(err, "NATSSink", "Publish", "encode reading")
	}
	if err := s.conn.Publish(ReadingSubject(reading.DeviceID), data); err != nil {
		return errors.WrapTransient(err, "NATSSink", "Publish", "publish reading")
	}
	return nil
}

// PublishAlert forwards a device lifecycle alert.
func (s *NATSSink) PublishAlert(_ context.Context, alert Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return errors.WrapInvalid(err, "NATSSink", "PublishAlert", "encode alert")
	}
	if err := s.conn.Publish(alertSubject, data); err != nil {
		return errors.WrapTransient(err, "NATSSink", "PublishAlert", "publish alert")
	}
	return nil
}

// Close flushes pending messages and drops the connection.
func (s *NATSSink) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Flush(); err != nil {
		s.logger.Warn("nats flush on close", "error", err)
	}
	s.conn.Close()
	return nil
}
