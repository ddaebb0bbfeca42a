package regkit

import (
	"context"
	"sync"

	"github.com/randalmurphal/regkit/pkg/regkit/observability"
)

// InstanceCache wraps a Registry and memoizes constructed instances per key,
// turning the registry into a singleton-per-key service locator.
//
// The wrapped registry's class mapping is never mutated by the cache, and
// classes registered after the cache is created are still reachable through
// it (the registry is held by reference, not copied).
type InstanceCache[T any] struct {
	mu  sync.Mutex
	cfg config

	registry Registry[T]

	// cache maps canonical key -> the instance built on first access.
	cache map[string]T
}

// NewInstanceCache creates an instance cache over the given registry.
// WithDefaultArgs sets constructor arguments used when Get is called
// without any.
//
// Example:
//
//	cache := regkit.NewInstanceCache(reg, regkit.WithDefaultArgs(cfg))
//	svc, err := cache.Get("mailer") // built once, same instance afterwards
func NewInstanceCache[T any](registry Registry[T], opts ...Option) *InstanceCache[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &InstanceCache[T]{
		cfg:      cfg,
		registry: registry,
		cache:    make(map[string]T),
	}
}

// Get returns the cached instance for the canonicalized key, constructing it
// through the wrapped registry on first access.
//
// On a cache hit the supplied args are ignored: the instance keeps whatever
// arguments were used when it was first built. The cache holds one instance
// per key, not one per (key, args).
func (c *InstanceCache[T]) Get(key string, args ...any) (T, error) {
	lookup := c.registry.LookupKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if instance, ok := c.cache[lookup]; ok {
		c.cfg.metrics.RecordCacheAccess(context.Background(), lookup, true)
		observability.LogCacheHit(c.cfg.logger, lookup)
		return instance, nil
	}

	c.cfg.metrics.RecordCacheAccess(context.Background(), lookup, false)
	observability.LogCacheMiss(c.cfg.logger, lookup)

	if len(args) == 0 {
		args = c.cfg.defaultArgs
	}
	instance, err := c.registry.Get(lookup, args...)
	if err != nil {
		var zero T
		return zero, err
	}

	c.cache[lookup] = instance
	return instance, nil
}

// MustGet is like Get but panics on error.
func (c *InstanceCache[T]) MustGet(key string, args ...any) T {
	instance, err := c.Get(key, args...)
	if err != nil {
		panic("regkit: cache get: " + err.Error())
	}
	return instance
}

// Instances returns the instances accessed so far, in the wrapped registry's
// key order. Keys that have never been accessed are not included.
func (c *InstanceCache[T]) Instances() []T {
	keys := c.registry.Keys()

	c.mu.Lock()
	defer c.mu.Unlock()

	instances := make([]T, 0, len(c.cache))
	for _, key := range keys {
		if instance, ok := c.cache[key]; ok {
			instances = append(instances, instance)
		}
	}
	return instances
}

// Len returns the number of cached instances. It does not reflect registered
// classes that haven't been accessed yet.
func (c *InstanceCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Invalidate drops the cached instance for the canonicalized key, if any.
// The next Get for that key constructs a fresh instance. Reports whether an
// instance was dropped.
func (c *InstanceCache[T]) Invalidate(key string) bool {
	lookup := c.registry.LookupKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.cache[lookup]
	delete(c.cache, lookup)
	return ok
}

// Clear drops every cached instance. The wrapped registry is unaffected.
func (c *InstanceCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]T)
}

// WarmUp constructs an instance for every key currently in the wrapped
// registry, using the default arguments. Classes registered afterwards are
// not affected.
func (c *InstanceCache[T]) WarmUp() error {
	for _, key := range c.registry.Keys() {
		if _, err := c.Get(key); err != nil {
			return err
		}
	}
	return nil
}
