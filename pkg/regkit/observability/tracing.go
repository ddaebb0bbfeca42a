package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the regkit tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("regkit")

// SpanManager handles trace span lifecycle for plugin discovery.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartDiscoverySpan starts a span for one plugin discovery pass.
	// Returns the context with span and the span itself.
	StartDiscoverySpan(ctx context.Context, group string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartDiscoverySpan starts a span for one plugin discovery pass.
func (m *otelSpanManager) StartDiscoverySpan(ctx context.Context, group string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "regkit.discovery",
		trace.WithAttributes(
			attribute.String("plugin.group", group),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Convenience functions that operate on the global tracer.
// These are useful for simple cases where you don't need the interface.

// StartDiscoverySpan starts a span for one plugin discovery pass.
// Uses the global OTel tracer.
func StartDiscoverySpan(ctx context.Context, group string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "regkit.discovery",
		trace.WithAttributes(
			attribute.String("plugin.group", group),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
