package regkit

import "fmt"

// Class describes a registrable type: a constructor plus class-level
// attributes. Classes are compared by pointer identity, so the same *Class
// can be registered in several registries (or under several keys) and still
// count as "the same class".
type Class[T any] struct {
	// Name is a human-readable type name, used in error messages and logs.
	Name string

	// New constructs an instance. Arguments are forwarded verbatim from
	// Registry.Get. Errors returned here propagate to the caller unwrapped.
	New func(args ...any) (T, error)

	// Attrs holds class-level attributes. Attribute-derived key policies,
	// sort keys, and plugin branding all read (and write) this map.
	Attrs map[string]any

	// Ops is the operation set used by auto-registration to decide whether
	// the class is abstract. A nil value declares an operation without
	// implementing it.
	Ops map[string]any
}

// Attr returns the named class attribute and whether it is present.
func (c *Class[T]) Attr(name string) (any, bool) {
	v, ok := c.Attrs[name]
	return v, ok
}

// SetAttr sets a class attribute, allocating the attribute map if needed.
// Plugin registries use this to brand classes with their registry key.
func (c *Class[T]) SetAttr(name string, value any) {
	if c.Attrs == nil {
		c.Attrs = make(map[string]any)
	}
	c.Attrs[name] = value
}

// Build constructs an instance, forwarding args to the constructor.
// Returns a ConfigError if the class has no constructor.
func (c *Class[T]) Build(args ...any) (T, error) {
	if c.New == nil {
		var zero T
		return zero, &ConfigError{Reason: fmt.Sprintf("class %s has no constructor", c.Name)}
	}
	return c.New(args...)
}

// Entry is a (key, class) pair. Sorted registries hand entries to
// comparators, and Range snapshots are built from them.
type Entry[T any] struct {
	// Key is the canonical key the class is registered under.
	Key string
	// Class is the registered class.
	Class *Class[T]
}

// Brandable is implemented by instances that want to learn the registry key
// they were constructed under. Plugin registries configured with an
// attribute name call SetRegistryKey on every instance they build, enabling
// reverse lookup (instance -> key).
type Brandable interface {
	SetRegistryKey(key string)
}
