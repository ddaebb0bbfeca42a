package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records regkit metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordLookup records a class lookup and whether the key resolved.
	RecordLookup(ctx context.Context, key string, found bool)

	// RecordConstruction records an instance construction attempt.
	RecordConstruction(ctx context.Context, key string, err error)

	// RecordCacheAccess records an instance cache access.
	RecordCacheAccess(ctx context.Context, key string, hit bool)

	// RecordDiscovery records a plugin discovery pass.
	RecordDiscovery(ctx context.Context, group string, loaded, failed int, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	lookups            metric.Int64Counter
	constructions      metric.Int64Counter
	constructionErrors metric.Int64Counter
	cacheAccesses      metric.Int64Counter
	discoveryEntries   metric.Int64Counter
	discoveryFailures  metric.Int64Counter
	discoveryLatency   metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("regkit")

	lookups, err := meter.Int64Counter("regkit.lookups",
		metric.WithDescription("Number of class lookups"),
	)
	if err != nil {
		return nil, err
	}

	constructions, err := meter.Int64Counter("regkit.constructions",
		metric.WithDescription("Number of instance constructions"),
	)
	if err != nil {
		return nil, err
	}

	constructionErrors, err := meter.Int64Counter("regkit.construction.errors",
		metric.WithDescription("Number of failed instance constructions"),
	)
	if err != nil {
		return nil, err
	}

	cacheAccesses, err := meter.Int64Counter("regkit.cache.accesses",
		metric.WithDescription("Number of instance cache accesses"),
	)
	if err != nil {
		return nil, err
	}

	discoveryEntries, err := meter.Int64Counter("regkit.discovery.entries",
		metric.WithDescription("Number of plugin entries loaded"),
	)
	if err != nil {
		return nil, err
	}

	discoveryFailures, err := meter.Int64Counter("regkit.discovery.failures",
		metric.WithDescription("Number of plugin entries that failed to load"),
	)
	if err != nil {
		return nil, err
	}

	discoveryLatency, err := meter.Float64Histogram("regkit.discovery.latency_ms",
		metric.WithDescription("Plugin discovery pass latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		lookups:            lookups,
		constructions:      constructions,
		constructionErrors: constructionErrors,
		cacheAccesses:      cacheAccesses,
		discoveryEntries:   discoveryEntries,
		discoveryFailures:  discoveryFailures,
		discoveryLatency:   discoveryLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordLookup records a class lookup.
func (m *otelMetrics) RecordLookup(ctx context.Context, key string, found bool) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key", key),
		attribute.Bool("found", found),
	))
}

// RecordConstruction records an instance construction attempt.
func (m *otelMetrics) RecordConstruction(ctx context.Context, key string, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("key", key),
	}

	m.constructions.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil {
		m.constructionErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordCacheAccess records an instance cache access.
func (m *otelMetrics) RecordCacheAccess(ctx context.Context, key string, hit bool) {
	m.cacheAccesses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key", key),
		attribute.Bool("hit", hit),
	))
}

// RecordDiscovery records a plugin discovery pass.
func (m *otelMetrics) RecordDiscovery(ctx context.Context, group string, loaded, failed int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("group", group),
	}

	m.discoveryEntries.Add(ctx, int64(loaded), metric.WithAttributes(attrs...))
	if failed > 0 {
		m.discoveryFailures.Add(ctx, int64(failed), metric.WithAttributes(attrs...))
	}
	m.discoveryLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
