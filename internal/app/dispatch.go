package app

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"sensor-relay/internal/api"
)

const tracerName = "sensor-relay/app"

// dispatch adapts fiber to the dispatcher: it frames the request, runs the
// matched handler inside a server span and writes the response back. Method
// and path are copied because fiber reuses their buffers after the handler
// returns, and the span outlives it. The body is passed as received on the
// wire: Content-Encoding is not decoded, so Content-Length frames the same
// bytes the client sent.
func dispatch(d *api.Dispatcher) fiber.Handler {
	tracer := otel.Tracer(tracerName)

	return func(c *fiber.Ctx) error {
		header := requestHeader(c)
		req := api.RawRequest{
			Method:  utils.CopyString(c.Method()),
			Path:    utils.CopyString(c.Path()),
			Headers: flatten(header),
			Body:    c.Request().Body(),
		}

		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(header))
		ctx, span := tracer.Start(ctx, req.Method+" "+req.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.path", req.Path),
			),
		)
		defer span.End()

		resp := d.Dispatch(ctx, req)
		span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))

		c.Status(resp.Status)
		if resp.ContentType != "" {
			c.Set(fiber.HeaderContentType, resp.ContentType)
		}
		return c.Send(resp.Body)
	}
}

// requestHeader copies the fasthttp headers out of the reused request buffer.
// Content-Length is taken only from what the client declared.
func requestHeader(c *fiber.Ctx) http.Header {
	header := make(http.Header)
	c.Request().Header.VisitAll(func(k, v []byte) {
		header.Add(string(k), string(v))
	})

	header.Del(fiber.HeaderContentLength)
	if cl := c.Get(fiber.HeaderContentLength); cl != "" {
		header.Set(fiber.HeaderContentLength, cl)
	}
	return header
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
