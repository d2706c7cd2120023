// Package main implements the entry point for the Sahool telemetry
// ingestion core: it consumes raw sensor payloads from an MQTT broker,
// normalizes them into canonical readings, tracks device lifecycle in the
// registry, and forwards readings downstream.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/kafaat/sahool-telemetry/config"
	"github.com/kafaat/sahool-telemetry/health"
	"github.com/kafaat/sahool-telemetry/ingest"
	"github.com/kafaat/sahool-telemetry/metric"
	"github.com/kafaat/sahool-telemetry/mqttclient"
	"github.com/kafaat/sahool-telemetry/registry"
	"github.com/kafaat/sahool-telemetry/sink"
	"github.com/kafaat/sahool-telemetry/telemetry"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "sahool-ingest"
)

func sprintf(format string, v ...any) string {
	return fmt.Sprintf(format, v...)
}

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()

	if cliCfg.ShowVersion {
		fmt.Printf("%s %s (build %s)\n", appName, Version, BuildTime)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}
	if err := validateFlags(cliCfg); err != nil {
		return err
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return err
	}
	if cliCfg.Validate {
		logger.Info("Configuration is valid")
		return nil
	}

	logger.Info("Starting telemetry ingestion",
		"org", cfg.Platform.Org,
		"instance", cfg.Platform.ID,
		"broker", cfg.MQTT.BrokerURL)

	// Metrics
	metricsRegistry := metric.NewMetricsRegistry()
	coreMetrics := metricsRegistry.CoreMetrics()
	monitor := health.NewMonitor()

	// Downstream sink
	var downstream sink.Sink
	if cfg.NATS.Enabled {
		downstream, err = sink.NewNATSSink(sink.NATSOptions{
			URLs:     cfg.NATS.URLs,
			Username: cfg.NATS.Username,
			Password: cfg.NATS.Password,
			Name:     cfg.NATS.Name,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
	} else {
		downstream = sink.NewLogSink(logger)
	}
	defer func() {
		if err := downstream.Close(); err != nil {
			logger.Warn("Sink close failed", "error", err)
		}
	}()

	// Device registry
	deviceRegistry := registry.NewRegistry(
		registry.WithLowBatteryThreshold(cfg.Registry.LowBatteryThreshold),
		registry.WithOfflineAfter(cfg.Registry.OfflineAfter()),
		registry.WithLogger(logger),
	)

	// Ingestion pipeline
	handler, err := ingest.NewHandler(ingest.HandlerDeps{
		Normalizer:   telemetry.NewNormalizer(),
		Registry:     deviceRegistry,
		Sink:         downstream,
		Metrics:      coreMetrics,
		Logger:       logger,
		AutoRegister: cfg.Registry.AutoRegister,
		TenantID:     cfg.Platform.Tenant,
	})
	if err != nil {
		return err
	}

	sweeper, err := ingest.NewSweeper(ingest.SweeperDeps{
		Registry: deviceRegistry,
		Sink:     downstream,
		Metrics:  coreMetrics,
		Logger:   logger,
		Schedule: cfg.Ingest.SweepSchedule,
	})
	if err != nil {
		return err
	}

	// Broker connection
	mqttOpts := []mqttclient.ClientOption{
		mqttclient.WithReconnectWait(cfg.MQTT.ReconnectWait()),
		mqttclient.WithCleanSession(cfg.MQTT.CleanSession),
		mqttclient.WithLogger(&mqttLogger{logger: logger}),
		mqttclient.WithConnectCallback(func() {
			coreMetrics.RecordBrokerStatus(true)
		}),
		mqttclient.WithConnectionLostCallback(func(error) {
			coreMetrics.RecordBrokerStatus(false)
			coreMetrics.RecordBrokerReconnect()
		}),
	}
	if cfg.MQTT.ClientID != "" {
		mqttOpts = append(mqttOpts, mqttclient.WithClientID(cfg.MQTT.ClientID))
	}
	if cfg.MQTT.Username != "" {
		mqttOpts = append(mqttOpts, mqttclient.WithCredentials(cfg.MQTT.Username, cfg.MQTT.Password))
	}

	client, err := mqttclient.NewClient(cfg.MQTT.BrokerURL, mqttOpts...)
	if err != nil {
		return err
	}

	monitor.RegisterCheck("mqtt", func() health.Status {
		switch client.Status() {
		case mqttclient.StatusConnected:
			return health.Healthy("", "connected").WithDetails(map[string]any{
				"reconnects": client.Reconnects(),
			})
		case mqttclient.StatusStopped:
			return health.Unhealthy("", "client stopped")
		default:
			return health.Degraded("", client.Status().String())
		}
	})
	monitor.RegisterCheck("registry", func() health.Status {
		stats := deviceRegistry.Stats()
		return health.Healthy("", "tracking devices").WithDetails(map[string]any{
			"devices": stats.Total,
			"offline": stats.ByStatus[registry.StatusOffline],
		})
	})

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		metricsServer = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsRegistry)
		metricsServer.SetHealthHandler(monitor)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		logger.Info("Metrics server listening", "address", metricsServer.Address())
	}

	sensorTopic := fmt.Sprintf("%s/sensors/#", cfg.Platform.Org)
	if err := client.Subscribe(sensorTopic, byte(cfg.MQTT.QoS), handler.HandleMessage); err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		// The client keeps retrying in the background; an initial timeout is
		// not fatal for a field gateway.
		logger.Warn("Initial broker connection not established, retrying in background", "error", err)
	}

	if err := sweeper.Start(); err != nil {
		return err
	}

	logger.Info("Ingestion running", "topic", sensorTopic, "qos", cfg.MQTT.QoS)

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down", "timeout", cliCfg.ShutdownTimeout)

	sweeper.Stop()
	client.Stop(cliCfg.ShutdownTimeout)
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Warn("Metrics server stop failed", "error", err)
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
