package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sensor-relay/internal/ingest"
	"sensor-relay/internal/models"
	"sensor-relay/internal/util"
)

type LocationResolver interface {
	Resolve(ctx context.Context) models.GeoLocation
}

type ReadingSink interface {
	LogReading(ctx context.Context, r models.SensorReading, digest string)
	LogParseFailure(ctx context.Context, raw []byte, err error, digest string)
}

type Handlers struct {
	resolver LocationResolver
	sink     ReadingSink
}

func NewHandlers(resolver LocationResolver, sink ReadingSink) *Handlers {
	return &Handlers{
		resolver: resolver,
		sink:     sink,
	}
}

// GetIndex serves the static landing page.
func (h *Handlers) GetIndex(ctx context.Context, req RawRequest) Response {
	return Response{Status: 200, ContentType: MIMETextHTML, Body: indexPage}
}

// GetLocation reports the server's city; it answers 200 even when the lookup
// degraded to Unknown.
func (h *Handlers) GetLocation(ctx context.Context, req RawRequest) Response {
	loc := h.resolver.Resolve(ctx)
	return textResponse(200, loc.City)
}

// PostReading accepts one reading. Undecodable bodies are echoed back with
// a 200 rather than rejected.
func (h *Handlers) PostReading(ctx context.Context, req RawRequest) Response {
	body := req.DeclaredBody()
	contentType, _ := req.Header("Content-Type")
	digest := util.PayloadDigest(body)

	fields, err := ingest.ParseBody(contentType, body)
	if err != nil {
		var perr *ingest.ParseError
		if !errors.As(err, &perr) {
			perr = &ingest.ParseError{Raw: body, Err: err}
		}
		h.sink.LogParseFailure(ctx, perr.Raw, perr.Err, digest)
		return textResponse(200, "invalid input: "+string(perr.Raw))
	}

	reading := ingest.ExtractReading(fields)
	h.sink.LogReading(ctx, reading, digest)

	return textResponse(200, acknowledgment(reading))
}

func acknowledgment(r models.SensorReading) string {
	var b strings.Builder
	b.WriteString("POST data received!\n")
	fmt.Fprintf(&b, "Location: %s\n", r.LocationOrDefault())
	fmt.Fprintf(&b, "Outside Temp: %s °C\n", r.OutsideTempOrDefault())
	fmt.Fprintf(&b, "Local Temp: %s °C\n", r.TemperatureOrDefault())
	fmt.Fprintf(&b, "Humidity: %s %%\n", r.HumidityOrDefault())
	return b.String()
}
