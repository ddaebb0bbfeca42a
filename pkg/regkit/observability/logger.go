// Package observability provides opt-in observability features for regkit:
// structured logging, metrics, and discovery tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Discovery tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogRegister logs a successful class registration.
func LogRegister(logger *slog.Logger, key, class string) {
	if logger == nil {
		return
	}
	logger.Debug("class registered",
		slog.String("key", key),
		slog.String("class", class),
	)
}

// LogUnregister logs a class removal.
func LogUnregister(logger *slog.Logger, key, class string) {
	if logger == nil {
		return
	}
	logger.Debug("class unregistered",
		slog.String("key", key),
		slog.String("class", class),
	)
}

// LogCollision logs a rejected registration in unique mode.
func LogCollision(logger *slog.Logger, key, existing, incoming string) {
	if logger == nil {
		return
	}
	logger.Warn("registration collision",
		slog.String("key", key),
		slog.String("existing", existing),
		slog.String("incoming", incoming),
	)
}

// LogCacheHit logs an instance cache hit.
func LogCacheHit(logger *slog.Logger, key string) {
	if logger == nil {
		return
	}
	logger.Debug("instance cache hit",
		slog.String("key", key),
	)
}

// LogCacheMiss logs an instance cache miss and the resulting construction.
func LogCacheMiss(logger *slog.Logger, key string) {
	if logger == nil {
		return
	}
	logger.Debug("instance cache miss",
		slog.String("key", key),
	)
}

// LogPatchApply logs the application of a registry patch.
func LogPatchApply(logger *slog.Logger, patchID string, keys []string) {
	if logger == nil {
		return
	}
	logger.Debug("registry patch applied",
		slog.String("patch_id", patchID),
		slog.Any("keys", keys),
	)
}

// LogPatchRestore logs the restoration of a registry patch.
func LogPatchRestore(logger *slog.Logger, patchID string) {
	if logger == nil {
		return
	}
	logger.Debug("registry patch restored",
		slog.String("patch_id", patchID),
	)
}

// LogDiscovery logs the outcome of a plugin discovery pass.
func LogDiscovery(logger *slog.Logger, group string, loaded, failed int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("plugin discovery completed",
		slog.String("group", group),
		slog.Int("loaded", loaded),
		slog.Int("failed", failed),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDiscoveryEntryError logs a single failed plugin entry (non-fatal).
func LogDiscoveryEntryError(logger *slog.Logger, group, name string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("plugin entry failed to load",
		slog.String("group", group),
		slog.String("name", name),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
