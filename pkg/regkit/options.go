package regkit

import (
	"log/slog"

	"github.com/randalmurphal/regkit/pkg/regkit/observability"
)

// config holds registry construction settings shared by ClassRegistry,
// SortedClassRegistry, InstanceCache, and Patcher.
type config struct {
	attrName    string
	unique      bool
	keyFn       KeyFunc
	reverse     bool
	defaultArgs []any
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
}

// defaultConfig returns the default registry configuration.
func defaultConfig() config {
	return config{
		keyFn:   Identity,
		metrics: observability.NoopMetrics{},
	}
}

// Option configures a registry, cache, or patcher at construction time.
type Option func(*config)

// WithAttrKey enables the attribute-derived key policy: RegisterClass reads
// the registration key from the named class attribute. The policy is fixed
// for the registry's lifetime.
//
// Example:
//
//	reg := regkit.New[Pokemon](regkit.WithAttrKey("element"))
//	reg.MustRegisterClass(charmander) // key = charmander.Attrs["element"]
func WithAttrKey(name string) Option {
	return func(c *config) {
		c.attrName = name
	}
}

// WithUnique makes the registry reject a registration whose key is already
// bound to a different class, instead of silently replacing it.
// Re-registering the identical class under its own key is not a collision.
func WithUnique() Option {
	return func(c *config) {
		c.unique = true
	}
}

// WithKeyFunc sets the key canonicalization function. It is applied on both
// registration and lookup, so aliases resolve to the same entry.
// Default: Identity.
func WithKeyFunc(fn KeyFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.keyFn = fn
		}
	}
}

// WithReverse reverses the iteration order of a sorted registry.
// It has no effect on insertion-ordered registries.
func WithReverse() Option {
	return func(c *config) {
		c.reverse = true
	}
}

// WithDefaultArgs sets the constructor arguments an InstanceCache uses when
// Get is called without explicit arguments.
func WithDefaultArgs(args ...any) Option {
	return func(c *config) {
		c.defaultArgs = args
	}
}

// WithLogger enables structured logging of registrations, removals,
// collisions, cache accesses, and patches. Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for lookups, constructions, and
// cache accesses. Default: observability.NoopMetrics.
func WithMetrics(rec observability.MetricsRecorder) Option {
	return func(c *config) {
		if rec != nil {
			c.metrics = rec
		}
	}
}
