package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"sensor-relay/internal/api"
	"sensor-relay/internal/config"
	"sensor-relay/internal/geo"
	"sensor-relay/internal/logging"
)

type App struct {
	*fiber.App
	cfg    config.Config
	logger *slog.Logger
}

// New wires the production routes: geolocation through cfg.GeoEndpoint and
// readings to the structured log.
func New(cfg config.Config, log *slog.Logger) *App {
	d := api.NewDispatcher()
	resolver := geo.NewResolver(cfg.GeoEndpoint, cfg.GeoTimeout, log)
	api.SetupRoutes(d, resolver, logging.NewReadingLogger(log))
	return NewWithDispatcher(cfg, log, d)
}

func NewWithDispatcher(cfg config.Config, log *slog.Logger, d *api.Dispatcher) *App {
	app := fiber.New(fiber.Config{
		AppName:               "sensor-relay",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		// Larger bodies are refused by the transport with 413 before dispatch.
		BodyLimit: cfg.BodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= 500 {
				log.Error("request failed",
					slog.String("method", c.Method()),
					slog.String("path", c.Path()),
					slog.String("error", err.Error()),
				)
			}
			return c.Status(code).JSON(fiber.Map{
				"error": http.StatusText(code),
			})
		},
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			TimeFormat: time.RFC3339,
		}))
	}

	// Every request goes through the dispatcher's routing table
	app.Use(dispatch(d))

	return &App{
		App:    app,
		cfg:    cfg,
		logger: log,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down.
// It returns only after in-flight requests have finished or the shutdown
// timeout has elapsed.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.App.Listener(ln)
	}()
	a.logger.Info("starting server", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", slog.Duration("timeout", a.cfg.ShutdownTimeout))
	shutdownErr := a.Close()
	return errors.Join(shutdownErr, <-serveErr)
}

// Close stops accepting connections and waits for in-flight requests up to
// the configured shutdown timeout.
func (a *App) Close() error {
	return a.App.ShutdownWithTimeout(a.cfg.ShutdownTimeout)
}
