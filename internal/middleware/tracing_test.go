package middleware

import (
	"net/http/httptest"
	"testing"

	"pulse/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("pulse-test")
	t.Cleanup(func() { observability.Tracer = prev })
	return recorder
}

func tracingApp() *fiber.App {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Use(Identity(testSecret, 1))
	app.Get("/post/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/boom", func(c *fiber.Ctx) error { return fiber.ErrServiceUnavailable })
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestSurface(t *testing.T) {
	assert.Equal(t, SurfaceRealtime, Surface("/api/ws"))
	assert.Equal(t, SurfaceAPI, Surface("/api/posts"))
	assert.Equal(t, SurfaceAPI, Surface("/api"))
	assert.Equal(t, SurfacePage, Surface("/apiary"))
	assert.Equal(t, SurfacePage, Surface("/post/3"))
}

func TestTracingMiddleware_NamesSpanByRoute(t *testing.T) {
	recorder := recordSpans(t)
	app := tracingApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/post/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /post/:id", span.Name())
	assert.Equal(t, span.SpanContext().TraceID().String(), resp.Header.Get(TraceHeader))

	attrs := spanAttrs(span)
	assert.Equal(t, "/post/:id", attrs["http.route"].AsString())
	assert.Equal(t, "/post/7", attrs["url.path"].AsString())
	assert.Equal(t, SurfacePage, attrs["pulse.surface"].AsString())
	assert.EqualValues(t, 1, attrs["pulse.user_id"].AsInt64())
	assert.EqualValues(t, fiber.StatusOK, attrs["http.response.status_code"].AsInt64())
	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestTracingMiddleware_MarksServerErrors(t *testing.T) {
	recorder := recordSpans(t)
	app := tracingApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, SurfaceAPI, attrs["pulse.surface"].AsString())
	assert.EqualValues(t, fiber.StatusServiceUnavailable, attrs["http.response.status_code"].AsInt64())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTracingMiddleware_SkipsHealthChecks(t *testing.T) {
	recorder := recordSpans(t)
	app := tracingApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(TraceHeader))
	assert.Empty(t, recorder.Ended())
}
