package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest creates a test tracer provider with an in-memory span recorder.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	// Save the original provider
	originalProvider := otel.GetTracerProvider()

	// Set test provider
	otel.SetTracerProvider(tp)

	// Update the package-level tracer
	tracer = otel.Tracer("regkit")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}

	return exporter, cleanup
}

func TestStartDiscoverySpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("creates span with correct name and attributes", func(t *testing.T) {
		ctx := context.Background()
		_, span := StartDiscoverySpan(ctx, "pokemon")
		require.NotNil(t, span)

		// End the span to flush it to the exporter
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "regkit.discovery", s.Name)

		var group string
		for _, attr := range s.Attributes {
			if attr.Key == "plugin.group" {
				group = attr.Value.AsString()
			}
		}
		assert.Equal(t, "pokemon", group)
	})

	t.Run("returns context with span", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		newCtx, span := StartDiscoverySpan(ctx, "digimon")

		// Context should be different
		assert.NotEqual(t, ctx, newCtx)

		span.End()

		// Should still have recorded the span
		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
	})
}

func TestEndSpanWithError(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("sets OK status for nil error", func(t *testing.T) {
		ctx := context.Background()
		_, span := StartDiscoverySpan(ctx, "pokemon")

		EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		assert.Equal(t, codes.Ok, spans[0].Status.Code)
		assert.Equal(t, "", spans[0].Status.Description)
	})

	t.Run("sets Error status and records error", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		_, span := StartDiscoverySpan(ctx, "pokemon")
		testErr := errors.New("manifest unreadable")

		EndSpanWithError(span, testErr)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, codes.Error, s.Status.Code)
		assert.Equal(t, "manifest unreadable", s.Status.Description)

		// Check that error was recorded as an event
		require.NotEmpty(t, s.Events)
		found := false
		for _, event := range s.Events {
			if event.Name == "exception" {
				found = true
			}
		}
		assert.True(t, found, "Expected exception event")
	})

	t.Run("nil span does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			EndSpanWithError(nil, nil)
		})
		assert.NotPanics(t, func() {
			EndSpanWithError(nil, errors.New("test"))
		})
	})
}

func TestSpanManager_Interface(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	require.NotNil(t, sm)

	t.Run("StartDiscoverySpan via interface", func(t *testing.T) {
		ctx := context.Background()
		_, span := sm.StartDiscoverySpan(ctx, "pokemon")
		require.NotNil(t, span)

		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.NotEmpty(t, spans)
		assert.Equal(t, "regkit.discovery", spans[0].Name)
	})
}

func TestOtelSpanManager_EndSpanWithError_Scenarios(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := &otelSpanManager{}

	t.Run("wrapped error message is preserved", func(t *testing.T) {
		ctx := context.Background()
		_, span := sm.StartDiscoverySpan(ctx, "pokemon")

		wrappedErr := errors.New("wrapped: inner error")
		sm.EndSpanWithError(span, wrappedErr)

		spans := exporter.GetSpans()
		require.NotEmpty(t, spans)
		assert.Contains(t, spans[0].Status.Description, "wrapped: inner error")
	})
}
