package middleware

import (
	"errors"
	"strings"

	"pulse/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceHeader echoes the request's trace id back to the caller.
const TraceHeader = "X-Trace-ID"

// Surface values recorded on request spans.
const (
	SurfacePage     = "page"
	SurfaceAPI      = "api"
	SurfaceRealtime = "realtime"
)

// untracedPrefixes cover health checks and the metrics scrape.
var untracedPrefixes = []string{"/health/", "/metrics"}

// Surface classifies a request path as a page view, a REST call or the
// realtime stream.
func Surface(path string) string {
	switch {
	case path == "/api/ws":
		return SurfaceRealtime
	case path == "/api" || strings.HasPrefix(path, "/api/"):
		return SurfaceAPI
	default:
		return SurfacePage
	}
}

// TracingMiddleware opens a server span for every page, API and websocket
// request. The span is named after the matched route template once routing
// has run, so /post/7 and /post/8 share one span name. The trace context is
// written back on the response for clients that want to correlate.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range untracedPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		propagator := otel.GetTextMapPropagator()
		ctx := propagator.Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		surface := Surface(path)
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Method()),
				attribute.String("url.path", path),
				attribute.String("client.address", c.IP()),
				attribute.String("pulse.surface", surface),
			),
		)
		defer span.End()

		sc := span.SpanContext()
		c.Locals("traceID", sc.TraceID().String())
		c.Locals("spanID", sc.SpanID().String())
		if requestID, ok := c.Locals("requestid").(string); ok && requestID != "" {
			span.SetAttributes(attribute.String("pulse.request_id", requestID))
		}

		// Headers must be set before the handler runs: websocket upgrades
		// hijack the connection and never return to write them.
		if sc.IsValid() {
			c.Set(TraceHeader, sc.TraceID().String())
			carrier := propagation.HeaderCarrier{}
			propagator.Inject(ctx, carrier)
			for _, key := range carrier.Keys() {
				c.Set(key, carrier.Get(key))
			}
		}

		c.SetUserContext(ctx)
		err := c.Next()

		if route := c.Route(); route != nil && route.Path != "/" && route.Path != "" {
			span.SetName(c.Method() + " " + route.Path)
			span.SetAttributes(attribute.String("http.route", route.Path))
		}
		if uid := UserID(c); uid != 0 {
			span.SetAttributes(attribute.Int64("pulse.user_id", int64(uid)))
		}

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
			span.RecordError(err)
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}

		return err
	}
}
