package plugin

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/randalmurphal/regkit/pkg/regkit"
	"github.com/randalmurphal/regkit/pkg/regkit/observability"
)

// options holds plugin registry construction settings.
type options struct {
	attrName string
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
}

func defaultOptions() options {
	return options{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a plugin Registry at construction time.
type Option func(*options)

// WithAttrName enables attribute branding: every loaded class gets the
// named attribute set (overwritten if present) to its registry key, and
// every constructed instance implementing regkit.Brandable is told its key.
// This enables reverse lookup from a class or instance back to its key.
func WithAttrName(name string) Option {
	return func(o *options) {
		o.attrName = name
	}
}

// WithLogger enables structured logging of discovery passes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder for discovery passes and lookups.
func WithMetrics(rec observability.MetricsRecorder) Option {
	return func(o *options) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithSpanManager enables tracing of discovery passes.
func WithSpanManager(spans observability.SpanManager) Option {
	return func(o *options) {
		if spans != nil {
			o.spans = spans
		}
	}
}

// Registry is a read-only class registry backed by a plugin Discoverer.
// It loads entries lazily on first access and caches them until Refresh.
//
// It satisfies regkit.Registry but deliberately not regkit.MutableRegistry:
// discovered registries cannot be registered into, unregistered from, or
// patched — their contents are whatever the discovery source advertises.
type Registry[T any] struct {
	opts  options
	disc  Discoverer[T]
	group string

	mu       sync.Mutex
	loaded   bool
	classes  map[string]*regkit.Class[T]
	order    []string
	loadErrs map[string]error
}

// Compile-time interface check.
var _ regkit.Registry[any] = (*Registry[any])(nil)

// NewRegistry creates a registry over one (discoverer, group) pair.
// Nothing is discovered until the first access or an explicit Load.
//
// Example:
//
//	reg := plugin.NewRegistry[Pokemon](groups, "pokemon",
//	    plugin.WithAttrName("element"))
func NewRegistry[T any](disc Discoverer[T], group string, opts ...Option) *Registry[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[T]{
		opts:  o,
		disc:  disc,
		group: group,
	}
}

// Group returns the discovery group this registry reads from.
func (r *Registry[T]) Group() string {
	return r.group
}

// Load runs a discovery pass now, unless one already succeeded.
// Use it to control when (and with which context) discovery happens;
// otherwise the first read access triggers it with a background context.
func (r *Registry[T]) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensure(ctx)
}

// Refresh drops the loaded entries. The next access re-runs discovery,
// picking up newly installed plugins.
func (r *Registry[T]) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = false
	r.classes = nil
	r.order = nil
	r.loadErrs = nil
}

// ensure loads the group if needed. Caller must hold r.mu.
func (r *Registry[T]) ensure(ctx context.Context) error {
	if r.loaded {
		return nil
	}

	ctx, span := r.opts.spans.StartDiscoverySpan(ctx, r.group)
	start := time.Now()

	entries, err := r.disc.Discover(ctx, r.group)
	if err != nil {
		r.opts.spans.EndSpanWithError(span, err)
		return err
	}

	r.classes = make(map[string]*regkit.Class[T], len(entries))
	r.order = r.order[:0]
	r.loadErrs = make(map[string]error)

	for _, e := range entries {
		if e.Err != nil {
			observability.LogDiscoveryEntryError(r.opts.logger, r.group, e.Name, e.Err)
			r.loadErrs[e.Name] = e.Err
			continue
		}
		if r.opts.attrName != "" {
			// Brand the class with its key, overwriting any prior value.
			e.Class.SetAttr(r.opts.attrName, e.Name)
		}
		if _, ok := r.classes[e.Name]; !ok {
			r.order = append(r.order, e.Name)
		}
		r.classes[e.Name] = e.Class
	}

	r.loaded = true
	elapsed := time.Since(start)
	observability.LogDiscovery(r.opts.logger, r.group, len(r.order), len(r.loadErrs), float64(elapsed.Milliseconds()))
	r.opts.metrics.RecordDiscovery(ctx, r.group, len(r.order), len(r.loadErrs), elapsed)
	r.opts.spans.EndSpanWithError(span, nil)
	return nil
}

// LookupKey returns the key unchanged: discovered entry names are already
// canonical.
func (r *Registry[T]) LookupKey(key string) string {
	return key
}

// GetClass resolves key to its discovered class. A key whose entry failed to
// load returns that entry's LoadError; an unknown key returns a
// NotFoundError.
func (r *Registry[T]) GetClass(key string) (*regkit.Class[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(context.Background()); err != nil {
		return nil, err
	}

	class, ok := r.classes[key]
	r.opts.metrics.RecordLookup(context.Background(), key, ok)
	if !ok {
		if loadErr, failed := r.loadErrs[key]; failed {
			return nil, loadErr
		}
		return nil, &regkit.NotFoundError{Key: key}
	}
	return class, nil
}

// Get resolves the class for key and constructs an instance with args.
// When branding is enabled, instances implementing regkit.Brandable are told
// their key before being returned.
func (r *Registry[T]) Get(key string, args ...any) (T, error) {
	class, err := r.GetClass(key)
	if err != nil {
		var zero T
		return zero, err
	}

	instance, err := class.Build(args...)
	r.opts.metrics.RecordConstruction(context.Background(), key, err)
	if err != nil {
		var zero T
		return zero, err
	}

	if r.opts.attrName != "" {
		if b, ok := any(instance).(regkit.Brandable); ok {
			b.SetRegistryKey(key)
		}
	}
	return instance, nil
}

// Keys returns the successfully loaded keys in discovery order.
func (r *Registry[T]) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensure(context.Background()); err != nil {
		return nil
	}
	return slices.Clone(r.order)
}

// Classes returns the loaded classes in discovery order.
func (r *Registry[T]) Classes() []*regkit.Class[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensure(context.Background()); err != nil {
		return nil
	}
	classes := make([]*regkit.Class[T], 0, len(r.order))
	for _, key := range r.order {
		classes = append(classes, r.classes[key])
	}
	return classes
}

// Len returns the number of successfully loaded entries.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensure(context.Background()); err != nil {
		return 0
	}
	return len(r.classes)
}

// Has reports whether key resolves to a loaded class.
func (r *Registry[T]) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensure(context.Background()); err != nil {
		return false
	}
	_, ok := r.classes[key]
	return ok
}

// Range iterates over a snapshot of the loaded (key, class) pairs in
// discovery order.
func (r *Registry[T]) Range(fn func(key string, class *regkit.Class[T]) bool) {
	r.mu.Lock()
	if err := r.ensure(context.Background()); err != nil {
		r.mu.Unlock()
		return
	}
	entries := make([]regkit.Entry[T], 0, len(r.order))
	for _, key := range r.order {
		entries = append(entries, regkit.Entry[T]{Key: key, Class: r.classes[key]})
	}
	r.mu.Unlock()

	for _, e := range entries {
		if !fn(e.Key, e.Class) {
			return
		}
	}
}

// LoadErrors returns the per-entry load failures from the last discovery
// pass, keyed by entry name. The map is a copy.
func (r *Registry[T]) LoadErrors() map[string]error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensure(context.Background()); err != nil {
		return nil
	}
	errs := make(map[string]error, len(r.loadErrs))
	for k, v := range r.loadErrs {
		errs[k] = v
	}
	return errs
}
