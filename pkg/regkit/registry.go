package regkit

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/randalmurphal/regkit/pkg/regkit/observability"
)

// Registry is the read contract: it resolves canonical keys to classes and
// constructs instances on demand. Lookups never mutate the registry.
//
// Every operation that accepts a raw key canonicalizes it with the
// registry's KeyFunc before touching the mapping.
type Registry[T any] interface {
	// GetClass resolves the canonicalized key to its class.
	// Returns a NotFoundError if no entry exists.
	GetClass(key string) (*Class[T], error)

	// Get resolves the class, then constructs an instance, forwarding args
	// verbatim to the constructor. Constructor errors propagate unwrapped.
	Get(key string, args ...any) (T, error)

	// Keys returns the canonical keys in registry-defined order.
	// The returned slice is a fresh copy reflecting current state.
	Keys() []string

	// Classes returns the registered classes in registry-defined order.
	Classes() []*Class[T]

	// Len returns the number of distinct canonical keys registered.
	Len() int

	// Has reports whether the canonicalized key resolves to an entry.
	Has(key string) bool

	// Range iterates over a snapshot of (key, class) pairs in
	// registry-defined order. If fn returns false, iteration stops.
	Range(fn func(key string, class *Class[T]) bool)

	// LookupKey returns the canonical form of a raw key.
	LookupKey(key string) string
}

// MutableRegistry extends Registry with the write contract.
type MutableRegistry[T any] interface {
	Registry[T]

	// Register binds a class to the canonicalized explicit key.
	Register(key string, class *Class[T]) error

	// RegisterClass binds a class under a key derived from the registry's
	// attribute policy. Returns a ConfigError if the registry has no policy
	// or the class lacks the attribute.
	RegisterClass(class *Class[T]) error

	// Unregister removes the entry for the canonicalized key and returns
	// the removed class. Returns a NotFoundError if absent.
	Unregister(key string) (*Class[T], error)

	// AttrName returns the attribute name of the key-derivation policy,
	// or "" when the registry has none.
	AttrName() string
}

// ClassRegistry is the standard mutable registry. Iteration follows
// registration order. All methods are safe for concurrent use.
type ClassRegistry[T any] struct {
	mu  sync.RWMutex
	cfg config

	// entries maps canonical key -> class.
	entries map[string]*Class[T]

	// order tracks canonical keys in registration order. Overwriting an
	// existing key keeps its position.
	order []string
}

// Compile-time interface check.
var _ MutableRegistry[any] = (*ClassRegistry[any])(nil)

// New creates an empty class registry.
//
// Example:
//
//	reg := regkit.New[Widget](regkit.WithAttrKey("widget_type"), regkit.WithUnique())
func New[T any](opts ...Option) *ClassRegistry[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ClassRegistry[T]{
		cfg:     cfg,
		entries: make(map[string]*Class[T]),
	}
}

// LookupKey returns the canonical form of a raw key.
func (r *ClassRegistry[T]) LookupKey(key string) string {
	return r.cfg.keyFn(key)
}

// AttrName returns the attribute name used for key derivation, or "".
func (r *ClassRegistry[T]) AttrName() string {
	return r.cfg.attrName
}

// GetClass resolves the canonicalized key to its class.
func (r *ClassRegistry[T]) GetClass(key string) (*Class[T], error) {
	lookup := r.cfg.keyFn(key)

	r.mu.RLock()
	class, ok := r.entries[lookup]
	r.mu.RUnlock()

	r.cfg.metrics.RecordLookup(context.Background(), lookup, ok)

	if !ok {
		return nil, &NotFoundError{Key: lookup}
	}
	return class, nil
}

// Get resolves the class for key and constructs an instance with args.
// Constructor errors are returned unwrapped.
func (r *ClassRegistry[T]) Get(key string, args ...any) (T, error) {
	class, err := r.GetClass(key)
	if err != nil {
		var zero T
		return zero, err
	}

	instance, err := class.Build(args...)
	r.cfg.metrics.RecordConstruction(context.Background(), r.cfg.keyFn(key), err)
	return instance, err
}

// Keys returns the canonical keys in registration order.
func (r *ClassRegistry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Classes returns the registered classes in registration order.
func (r *ClassRegistry[T]) Classes() []*Class[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	classes := make([]*Class[T], 0, len(r.order))
	for _, key := range r.order {
		classes = append(classes, r.entries[key])
	}
	return classes
}

// Len returns the number of registered keys.
func (r *ClassRegistry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Has reports whether the canonicalized key is registered.
func (r *ClassRegistry[T]) Has(key string) bool {
	lookup := r.cfg.keyFn(key)
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[lookup]
	return ok
}

// Range iterates over a snapshot of the registry in registration order.
// It is safe to call Register or Unregister from fn without affecting the
// current iteration.
func (r *ClassRegistry[T]) Range(fn func(key string, class *Class[T]) bool) {
	for _, e := range r.snapshot() {
		if !fn(e.Key, e.Class) {
			return
		}
	}
}

// snapshot copies the current (key, class) pairs in registration order.
func (r *ClassRegistry[T]) snapshot() []Entry[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]Entry[T], 0, len(r.order))
	for _, key := range r.order {
		entries = append(entries, Entry[T]{Key: key, Class: r.entries[key]})
	}
	return entries
}

// Register binds class to the canonicalized explicit key.
//
// In unique mode, a key already bound to a different class is rejected with
// a CollisionError and the existing entry is left untouched. Otherwise the
// last registration wins.
func (r *ClassRegistry[T]) Register(key string, class *Class[T]) error {
	return r.register(r.cfg.keyFn(key), class)
}

// MustRegister is like Register but panics on error.
func (r *ClassRegistry[T]) MustRegister(key string, class *Class[T]) {
	if err := r.Register(key, class); err != nil {
		panic(fmt.Sprintf("regkit: register %q: %v", key, err))
	}
}

// RegisterClass binds class under a key read from the registry's attribute
// policy.
func (r *ClassRegistry[T]) RegisterClass(class *Class[T]) error {
	key, err := r.deriveKey(class)
	if err != nil {
		return err
	}
	return r.register(r.cfg.keyFn(key), class)
}

// MustRegisterClass is like RegisterClass but panics on error.
func (r *ClassRegistry[T]) MustRegisterClass(class *Class[T]) {
	if err := r.RegisterClass(class); err != nil {
		panic(fmt.Sprintf("regkit: register class: %v", err))
	}
}

// deriveKey reads the registration key off the class attribute named by the
// registry's key policy.
func (r *ClassRegistry[T]) deriveKey(class *Class[T]) (string, error) {
	if class == nil {
		return "", &ConfigError{Reason: "cannot register a nil class"}
	}
	if r.cfg.attrName == "" {
		return "", &ConfigError{
			Reason: fmt.Sprintf("registering %s requires an explicit key: no attribute key policy is set", class.Name),
		}
	}
	v, ok := class.Attr(r.cfg.attrName)
	if !ok {
		return "", &ConfigError{
			Reason: fmt.Sprintf("class %s has no attribute %q", class.Name, r.cfg.attrName),
		}
	}
	key, ok := v.(string)
	if !ok {
		return "", &ConfigError{
			Reason: fmt.Sprintf("attribute %q of class %s is %T, want string", r.cfg.attrName, class.Name, v),
		}
	}
	return key, nil
}

// register stores class under an already-canonicalized key.
func (r *ClassRegistry[T]) register(lookup string, class *Class[T]) error {
	if class == nil {
		return &ConfigError{Reason: "cannot register a nil class"}
	}
	if lookup == "" {
		return fmt.Errorf("register %s: %w", class.Name, ErrEmptyKey)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[lookup]; ok {
		if r.cfg.unique && existing != class {
			observability.LogCollision(r.cfg.logger, lookup, existing.Name, class.Name)
			return &CollisionError[T]{Key: lookup, Existing: existing, Incoming: class}
		}
	} else {
		r.order = append(r.order, lookup)
	}

	r.entries[lookup] = class
	observability.LogRegister(r.cfg.logger, lookup, class.Name)
	return nil
}

// Unregister removes the entry for the canonicalized key.
func (r *ClassRegistry[T]) Unregister(key string) (*Class[T], error) {
	lookup := r.cfg.keyFn(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	class, ok := r.entries[lookup]
	if !ok {
		return nil, &NotFoundError{Key: lookup}
	}

	delete(r.entries, lookup)
	if i := slices.Index(r.order, lookup); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}

	observability.LogUnregister(r.cfg.logger, lookup, class.Name)
	return class, nil
}
