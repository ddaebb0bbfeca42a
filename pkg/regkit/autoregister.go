package regkit

import (
	"fmt"
	"slices"
)

// Base coordinates automatic registration of derived classes. It is the
// explicit Go rendition of "register every non-abstract subclass as it is
// defined": instead of a metaclass side effect, each derived class is passed
// through Define once, typically from the defining package's init function.
//
// A class is abstract — and therefore skipped — if and only if at least one
// required operation has no implementation in its Ops set. Merely being
// "marked" abstract is not enough; the base itself is not a class and is
// never registered.
type Base[T any] struct {
	registry MutableRegistry[T]
	required []string
}

// AutoRegister creates a registration base over the given registry, with the
// listed operation names required of every concrete derived class.
//
// The registry must have an attribute key policy (the derived class's key is
// read off that attribute, same as RegisterClass); otherwise a ConfigError
// is returned.
//
// Example:
//
//	commands := regkit.New[Command](regkit.WithAttrKey("command_name"))
//	base, _ := regkit.AutoRegister(commands, "Run")
//
//	func init() {
//	    base.MustDefine(&regkit.Class[Command]{
//	        Name:  "PrintCommand",
//	        New:   newPrintCommand,
//	        Attrs: map[string]any{"command_name": "print"},
//	        Ops:   map[string]any{"Run": runPrint},
//	    })
//	}
func AutoRegister[T any](registry MutableRegistry[T], required ...string) (*Base[T], error) {
	if registry.AttrName() == "" {
		return nil, &ConfigError{
			Reason: "auto-registration requires a registry with an attribute key policy",
		}
	}
	return &Base[T]{
		registry: registry,
		required: slices.Clone(required),
	}, nil
}

// Define registers class with the base's registry if it is concrete.
// Abstract classes are returned unchanged without being registered — they
// exist to be extended, not constructed. The class is returned either way so
// Define can wrap a declaration.
func (b *Base[T]) Define(class *Class[T]) (*Class[T], error) {
	if class == nil {
		return nil, &ConfigError{Reason: "cannot define a nil class"}
	}
	if b.abstract(class) {
		return class, nil
	}
	if err := b.registry.RegisterClass(class); err != nil {
		return nil, err
	}
	return class, nil
}

// MustDefine is like Define but panics on error.
func (b *Base[T]) MustDefine(class *Class[T]) *Class[T] {
	defined, err := b.Define(class)
	if err != nil {
		panic(fmt.Sprintf("regkit: define %s: %v", class.Name, err))
	}
	return defined
}

// Extend derives a new base that additionally requires the given operations.
// Use it to model intermediate abstract layers that add requirements for
// their own descendants.
func (b *Base[T]) Extend(required ...string) *Base[T] {
	merged := slices.Clone(b.required)
	for _, op := range required {
		if !slices.Contains(merged, op) {
			merged = append(merged, op)
		}
	}
	return &Base[T]{registry: b.registry, required: merged}
}

// Required returns the operation names concrete classes must implement.
func (b *Base[T]) Required() []string {
	return slices.Clone(b.required)
}

// abstract reports whether class leaves any required operation
// unimplemented. A nil entry in Ops declares an operation without providing
// it, so a class can also declare new abstract operations of its own.
func (b *Base[T]) abstract(class *Class[T]) bool {
	for _, op := range b.required {
		if impl, ok := class.Ops[op]; !ok || impl == nil {
			return true
		}
	}
	for _, impl := range class.Ops {
		if impl == nil {
			return true
		}
	}
	return false
}
