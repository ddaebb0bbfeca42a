package regkit

import (
	"cmp"
	"fmt"
	"slices"
)

// SortedClassRegistry is a ClassRegistry whose iteration order is a
// deterministic sort over (key, class) pairs instead of registration order.
//
// The order is recomputed at each Keys/Classes/Range call, so it always
// reflects intervening Register and Unregister calls.
type SortedClassRegistry[T any] struct {
	*ClassRegistry[T]

	compare func(a, b Entry[T]) int
}

// Compile-time interface check.
var _ MutableRegistry[any] = (*SortedClassRegistry[any])(nil)

// NewSortedByAttr creates a registry sorted ascending by the named class
// attribute, with a stable tie-break on canonical key. Returns a ConfigError
// if attr is empty.
//
// Example:
//
//	reg, err := regkit.NewSortedByAttr[Pokemon]("weight")
func NewSortedByAttr[T any](attr string, opts ...Option) (*SortedClassRegistry[T], error) {
	if attr == "" {
		return nil, &ConfigError{Reason: "sorted registry requires a sort attribute or comparator"}
	}
	return newSorted[T](attrComparator[T](attr), opts...), nil
}

// NewSortedFunc creates a registry ordered by the supplied comparator over
// (key, class) pairs. The sort is stable: entries that compare equal keep
// registration order. Returns a ConfigError if compare is nil.
func NewSortedFunc[T any](compare func(a, b Entry[T]) int, opts ...Option) (*SortedClassRegistry[T], error) {
	if compare == nil {
		return nil, &ConfigError{Reason: "sorted registry requires a sort attribute or comparator"}
	}
	return newSorted[T](compare, opts...), nil
}

func newSorted[T any](compare func(a, b Entry[T]) int, opts ...Option) *SortedClassRegistry[T] {
	base := New[T](opts...)
	if base.cfg.reverse {
		inner := compare
		compare = func(a, b Entry[T]) int { return -inner(a, b) }
	}
	return &SortedClassRegistry[T]{
		ClassRegistry: base,
		compare:       compare,
	}
}

// attrComparator orders entries ascending by the named class attribute,
// breaking ties by canonical key.
func attrComparator[T any](attr string) func(a, b Entry[T]) int {
	return func(a, b Entry[T]) int {
		av, _ := a.Class.Attr(attr)
		bv, _ := b.Class.Attr(attr)
		if c := compareAttrValues(av, bv); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	}
}

// compareAttrValues imposes a total order on attribute values: strings
// compare lexically, numeric values numerically (across int/float kinds),
// and everything else by formatted representation.
func compareAttrValues(a, b any) int {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return cmp.Compare(as, bs)
		}
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// sortedSnapshot copies the current entries and sorts them.
func (r *SortedClassRegistry[T]) sortedSnapshot() []Entry[T] {
	entries := r.snapshot()
	slices.SortStableFunc(entries, r.compare)
	return entries
}

// Keys returns the canonical keys in sort order.
func (r *SortedClassRegistry[T]) Keys() []string {
	entries := r.sortedSnapshot()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Classes returns the registered classes in sort order.
func (r *SortedClassRegistry[T]) Classes() []*Class[T] {
	entries := r.sortedSnapshot()
	classes := make([]*Class[T], len(entries))
	for i, e := range entries {
		classes[i] = e.Class
	}
	return classes
}

// Range iterates over a snapshot of the registry in sort order.
func (r *SortedClassRegistry[T]) Range(fn func(key string, class *Class[T]) bool) {
	for _, e := range r.sortedSnapshot() {
		if !fn(e.Key, e.Class) {
			return
		}
	}
}
