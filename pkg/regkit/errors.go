package regkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookups and registration.
var (
	// ErrNotFound indicates no class is registered under the requested key.
	ErrNotFound = errors.New("key not found")

	// ErrCollision indicates a unique-mode registry rejected a registration
	// because the key is already bound to a different class.
	ErrCollision = errors.New("key collision")

	// ErrEmptyKey indicates a registration attempted to use an empty key.
	ErrEmptyKey = errors.New("empty registry key")
)

// Sentinel errors for registry configuration.
var (
	// ErrConfiguration indicates a registry, patcher, or auto-registration
	// base was constructed or used in a way its configuration doesn't allow.
	ErrConfiguration = errors.New("invalid registry configuration")

	// ErrPatchActive indicates a patcher was applied a second time before
	// its restore function ran.
	ErrPatchActive = errors.New("patch already applied")
)

// NotFoundError reports a lookup for an unregistered key.
// The key is the canonical (post-normalization) form.
type NotFoundError struct {
	// Key is the canonical key that failed to resolve.
	Key string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no class registered under key %q", e.Key)
}

// Unwrap returns ErrNotFound for errors.Is support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// CollisionError reports a rejected registration in unique mode.
// It carries both the class that holds the key and the class that was refused.
type CollisionError[T any] struct {
	// Key is the canonical key both classes want.
	Key string
	// Existing is the class currently registered under Key. It is left in place.
	Existing *Class[T]
	// Incoming is the class whose registration was refused.
	Incoming *Class[T]
}

// Error implements the error interface.
func (e *CollisionError[T]) Error() string {
	return fmt.Sprintf("key %q is already registered to %s, refusing %s",
		e.Key, e.Existing.Name, e.Incoming.Name)
}

// Unwrap returns ErrCollision for errors.Is support.
func (e *CollisionError[T]) Unwrap() error {
	return ErrCollision
}

// ConfigError reports an impossible registry operation, such as deriving a
// key without an attribute policy or building a sorted registry without an
// ordering rule.
type ConfigError struct {
	// Reason describes what the configuration is missing.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "registry configuration: " + e.Reason
}

// Unwrap returns ErrConfiguration for errors.Is support.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
