package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sensor-relay/internal/app"
	"sensor-relay/internal/config"
	"sensor-relay/internal/logging"
	"sensor-relay/internal/tracing"
)

func main() {
	cfg, invalid, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	for _, inv := range invalid {
		logger.Warn("invalid setting, using default",
			slog.String("key", inv.Key),
			slog.String("value", inv.Value),
			slog.String("default", inv.Default),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// run owns everything that needs cleanup, so deferred shutdowns complete
// before main decides the exit code.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var spanOut io.Writer
	if cfg.TraceStdout {
		spanOut = os.Stdout
	}
	shutdownTracing, err := tracing.Setup(ctx, spanOut)
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown", slog.String("error", err.Error()))
		}
	}()

	return app.New(cfg, logger).Run(ctx)
}
