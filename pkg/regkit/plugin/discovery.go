package plugin

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/randalmurphal/regkit/pkg/regkit"
)

// Entry is one discovered plugin: a name and either a loaded class or the
// error that prevented loading it. A failed entry never aborts enumeration
// of the rest.
type Entry[T any] struct {
	// Name is the registry key the class is advertised under.
	Name string

	// Class is the loaded class. Nil when Err is set.
	Class *regkit.Class[T]

	// Err is the per-entry load failure, if any. Always a *LoadError.
	Err error
}

// Discoverer enumerates the registrable classes advertised under a group
// name. Implementations must report per-entry failures through Entry.Err and
// reserve the error return for failures of the enumeration itself.
type Discoverer[T any] interface {
	Discover(ctx context.Context, group string) ([]Entry[T], error)
}

// LoadError wraps the failure to resolve one discovered plugin entry into a
// class. It is surfaced per entry and never propagates past discovery.
type LoadError struct {
	// Group is the discovery group the entry belongs to.
	Group string
	// Name is the entry's registry key.
	Name string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("plugin %s/%s failed to load: %v", e.Group, e.Name, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// GroupSet is an in-process discovery source. Packages advertise classes by
// calling Add from their init functions, and hosts discover them by group —
// the same shape as database/sql's driver registration, with named groups.
//
// A GroupSet is safe for concurrent use.
type GroupSet[T any] struct {
	mu     sync.RWMutex
	groups map[string][]Entry[T]
}

// Compile-time interface check.
var _ Discoverer[any] = (*GroupSet[any])(nil)

// NewGroupSet creates an empty group set.
func NewGroupSet[T any]() *GroupSet[T] {
	return &GroupSet[T]{
		groups: make(map[string][]Entry[T]),
	}
}

// Add advertises a class under (group, name). Re-adding a name replaces the
// previous class in place, keeping its discovery position.
func (s *GroupSet[T]) Add(group, name string, class *regkit.Class[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.groups[group]
	for i, e := range entries {
		if e.Name == name {
			entries[i].Class = class
			return
		}
	}
	s.groups[group] = append(entries, Entry[T]{Name: name, Class: class})
}

// Discover returns the entries advertised under group, in Add order.
// Unknown groups yield an empty result, not an error.
func (s *GroupSet[T]) Discover(_ context.Context, group string) ([]Entry[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.groups[group]), nil
}

// Groups returns the group names with at least one entry, sorted.
func (s *GroupSet[T]) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
