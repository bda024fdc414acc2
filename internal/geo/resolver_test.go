package geo

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"sensor-relay/internal/models"
)

func newTestResolver(t *testing.T, endpoint string, timeout time.Duration) (*Resolver, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewResolver(endpoint, timeout, logger), &buf
}

func TestResolveCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("Expected no query parameters, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ip":"203.0.113.7","city":"Lisbon","country":"PT"}`)
	}))
	defer srv.Close()

	r, logs := newTestResolver(t, srv.URL, time.Second)

	got := r.Resolve(context.Background())
	if got.City != "Lisbon" {
		t.Errorf("Expected Lisbon, got %q", got.City)
	}
	if got != models.NewGeoLocation("Lisbon") {
		t.Errorf("Expected location %+v, got %+v", models.NewGeoLocation("Lisbon"), got)
	}
	if logs.Len() != 0 {
		t.Errorf("Expected no log output on success, got %q", logs.String())
	}
}

func TestResolveDegradesToUnknown(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{"city":"Lisbon"}`},
		{"rate limited", http.StatusTooManyRequests, ``},
		{"malformed json", http.StatusOK, `<html>nope</html>`},
		{"missing city", http.StatusOK, `{"ip":"203.0.113.7"}`},
		{"empty city", http.StatusOK, `{"city":""}`},
		{"null city", http.StatusOK, `{"city":null}`},
		{"numeric city", http.StatusOK, `{"city":12}`},
		{"array", http.StatusOK, `["Lisbon"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.payload)
			}))
			defer srv.Close()

			r, logs := newTestResolver(t, srv.URL, time.Second)

			got := r.Resolve(context.Background())
			if got.City != models.UnknownCity {
				t.Errorf("Expected %q, got %q", models.UnknownCity, got.City)
			}
			if !strings.Contains(logs.String(), "level=ERROR") {
				t.Errorf("Expected an error log entry, got %q", logs.String())
			}
		})
	}
}

func TestResolveUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r, _ := newTestResolver(t, url, time.Second)

	if got := r.Resolve(context.Background()); got.City != models.UnknownCity {
		t.Errorf("Expected %q for unreachable endpoint, got %q", models.UnknownCity, got.City)
	}
}

func TestResolveTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r, logs := newTestResolver(t, srv.URL, 50*time.Millisecond)

	start := time.Now()
	got := r.Resolve(context.Background())
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected resolve to be bounded by the timeout, took %v", elapsed)
	}
	if got.City != models.UnknownCity {
		t.Errorf("Expected %q after timeout, got %q", models.UnknownCity, got.City)
	}
	if logs.Len() == 0 {
		t.Errorf("Expected timeout to be logged")
	}
}

func TestNewResolverAlwaysBoundsTimeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewResolver("", 0, logger)
	if r.client.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", DefaultTimeout, r.client.Timeout)
	}
	if r.endpoint != DefaultEndpoint {
		t.Errorf("Expected default endpoint %q, got %q", DefaultEndpoint, r.endpoint)
	}

	r = NewResolver("http://example.invalid", time.Second, logger, WithHTTPClient(&http.Client{}))
	if r.client.Timeout != time.Second {
		t.Errorf("Expected client without timeout to get %v, got %v", time.Second, r.client.Timeout)
	}
}

type countingTransport struct {
	calls int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	return http.DefaultTransport.RoundTrip(req)
}

func TestWithHTTPClientKeepsCallerClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"city":"Porto"}`)
	}))
	defer srv.Close()

	base := &countingTransport{}
	client := &http.Client{Transport: base}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewResolver(srv.URL, 750*time.Millisecond, logger, WithHTTPClient(client))

	if client.Timeout != 0 {
		t.Errorf("Expected caller client timeout untouched, got %v", client.Timeout)
	}
	if client.Transport != base {
		t.Errorf("Expected caller client transport untouched")
	}
	if r.client == client {
		t.Errorf("Expected resolver to hold its own copy of the client")
	}
	if r.client.Timeout != 750*time.Millisecond {
		t.Errorf("Expected timeout %v, got %v", 750*time.Millisecond, r.client.Timeout)
	}
	if _, ok := r.client.Transport.(*otelhttp.Transport); !ok {
		t.Errorf("Expected instrumented transport, got %T", r.client.Transport)
	}

	if got := r.Resolve(context.Background()); got.City != "Porto" {
		t.Errorf("Expected Porto, got %q", got.City)
	}
	if base.calls != 1 {
		t.Errorf("Expected the caller transport to carry 1 request, got %d", base.calls)
	}
}
