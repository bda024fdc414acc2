package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"sensor-relay/internal/models"
)

const (
	DefaultEndpoint = "https://ipinfo.io/json"
	DefaultTimeout  = 5 * time.Second

	// maxResponseBytes caps how much of the upstream reply is read.
	maxResponseBytes = 64 << 10
)

var errNoCity = errors.New("response has no city")

// Resolver looks up the server's city from its public IP. Every failure
// degrades to models.UnknownCity.
type Resolver struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

type Option func(*Resolver)

// WithHTTPClient replaces the outbound client. The resolver works on a copy:
// a client without a timeout gets the resolver's timeout, and its transport
// is wrapped for tracing unless it already is.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		cp := *c
		r.client = &cp
	}
}

func NewResolver(endpoint string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Resolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r := &Resolver{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With(slog.String("component", "geo")),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client.Timeout <= 0 {
		r.client.Timeout = timeout
	}
	if _, ok := r.client.Transport.(*otelhttp.Transport); !ok {
		base := r.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		r.client.Transport = otelhttp.NewTransport(base)
	}
	return r
}

func (r *Resolver) Resolve(ctx context.Context) models.GeoLocation {
	city, err := r.lookup(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "error fetching location",
			slog.String("endpoint", r.endpoint),
			slog.String("error", err.Error()),
		)
		return models.NewGeoLocation(models.UnknownCity)
	}
	return models.NewGeoLocation(city)
}

type ipInfoResponse struct {
	City *string `json:"city"`
}

func (r *Resolver) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("http.NewRequest: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var info ipInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("json.Unmarshal: %w", err)
	}
	if info.City == nil || *info.City == "" {
		return "", errNoCity
	}

	return *info.City, nil
}
