package main

import (
	"log/slog"
	"os"
	"strings"
)

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler

	// Parse level
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: level == "debug",
	}

	// Create handler based on format
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With(
		"service", appName,
		"version", Version,
		"pid", os.Getpid(),
	)
}

// mqttLogger adapts slog to the mqttclient Logger interface.
type mqttLogger struct {
	logger *slog.Logger
}

func (l *mqttLogger) Printf(format string, v ...any) {
	l.logger.Info(sprintf(format, v...))
}

func (l *mqttLogger) Errorf(format string, v ...any) {
	l.logger.Error(sprintf(format, v...))
}

func (l *mqttLogger) Debugf(format string, v ...any) {
	l.logger.Debug(sprintf(format, v...))
}
