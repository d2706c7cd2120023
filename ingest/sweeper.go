package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kafaat/sahool-telemetry/errors"
	"github.com/kafaat/sahool-telemetry/metric"
	"github.com/kafaat/sahool-telemetry/registry"
	"github.com/kafaat/sahool-telemetry/sink"
)

// SweeperDeps carries the collaborators a Sweeper needs.
type SweeperDeps struct {
	Registry *registry.Registry
	Sink     sink.Sink
	Metrics  *metric.Metrics
	Logger   *slog.Logger

	// Schedule is a standard five-field cron expression.
	Schedule string
}

// Sweeper periodically transitions silent devices to offline and emits an
// alert for each transition.
type Sweeper struct {
	registry *registry.Registry
	sink     sink.Sink
	metrics  *metric.Metrics
	logger   *slog.Logger
	schedule string

	cron    *cron.Cron
	entryID cron.EntryID
}

// NewSweeper creates an offline sweeper on the given cron schedule.
func NewSweeper(deps SweeperDeps) (*Sweeper, error) {
	if deps.Registry == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Sweeper", "NewSweeper", "registry")
	}
	if deps.Sink == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Sweeper", "NewSweeper", "sink")
	}
	if deps.Schedule == "" {
		deps.Schedule = "*/5 * * * *"
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Sweeper{
		registry: deps.Registry,
		sink:     deps.Sink,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		schedule: deps.Schedule,
		cron:     cron.New(),
	}, nil
}

// Start schedules the sweep. The cron expression is validated here, so a
// typo fails at startup rather than silently never firing.
func (s *Sweeper) Start() error {
	id, err := s.cron.AddFunc(s.schedule, s.Sweep)
	if err != nil {
		return errors.WrapFatal(err, "Sweeper", "Start", "parse cron schedule")
	}
	s.entryID = id
	s.cron.Start()
	s.logger.Info("offline sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("offline sweeper stopped")
}

// Sweep runs one offline check immediately. Also invoked by the cron entry.
func (s *Sweeper) Sweep() {
	transitioned := s.registry.CheckOfflineDevices()
	if s.metrics != nil {
		s.metrics.RecordOfflineSweep()
		stats := s.registry.Stats()
		s.metrics.RecordDeviceCount(stats.Total)
		for status, count := range stats.ByStatus {
			s.metrics.RecordDevicesByStatus(status.String(), count)
		}
	}
	if len(transitioned) == 0 {
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, tr := range transitioned {
		d := tr.Device
		s.logger.Warn("device offline",
			"device_id", d.DeviceID,
			"field_id", d.FieldID,
			"last_seen", d.LastSeen,
			"was", tr.Previous.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.sink.PublishAlert(ctx, sink.Alert{
			DeviceID: d.DeviceID,
			FieldID:  d.FieldID,
			Status:   registry.StatusOffline.String(),
			Previous: tr.Previous.String(),
			Message:  "device stopped reporting",
			At:       now,
		})
		cancel()
		if err != nil {
			s.logger.Error("alert publish failed",
				"device_id", d.DeviceID,
				"error", err)
			if s.metrics != nil {
				s.metrics.RecordError("sweeper", errors.Classify(err).String())
			}
		}
	}
}
