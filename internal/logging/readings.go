package logging

import (
	"context"
	"log/slog"

	"sensor-relay/internal/models"
)

// ReadingLogger writes one record per POSTed reading. It never reports
// failures to its caller.
type ReadingLogger struct {
	logger *slog.Logger
}

func NewReadingLogger(logger *slog.Logger) *ReadingLogger {
	return &ReadingLogger{logger: logger.With(slog.String("component", "telemetry"))}
}

func (l *ReadingLogger) LogReading(ctx context.Context, r models.SensorReading, digest string) {
	defer l.suppress()

	l.logger.LogAttrs(ctx, slog.LevelInfo, "data received",
		slog.String("location", r.LocationOrDefault()),
		slog.String("outside_temp", r.OutsideTempOrDefault()),
		slog.String("temperature", r.TemperatureOrDefault()),
		slog.String("humidity", r.HumidityOrDefault()),
		slog.String("payload_sha256", digest),
	)
}

func (l *ReadingLogger) LogParseFailure(ctx context.Context, raw []byte, err error, digest string) {
	defer l.suppress()

	l.logger.LogAttrs(ctx, slog.LevelWarn, "failed to parse payload",
		slog.String("error", err.Error()),
		slog.String("raw_payload", string(raw)),
		slog.String("payload_sha256", digest),
	)
}

// suppress swallows a panicking handler so a broken log sink cannot stop a
// response from being sent.
func (l *ReadingLogger) suppress() {
	_ = recover()
}
