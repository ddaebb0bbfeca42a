package regkit

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/regkit/pkg/regkit/observability"
)

// patchEntry is one pending replacement. When derive is set, the key is read
// from the registry's attribute policy at Apply time.
type patchEntry[T any] struct {
	key    string
	derive bool
	class  *Class[T]
}

// savedEntry records what a key held before the patch touched it.
// A nil class means the key was absent.
type savedEntry[T any] struct {
	key   string
	class *Class[T]
}

// Patcher temporarily adds or overrides registry entries and restores the
// prior state afterwards, no matter how the patched scope exits. It is the
// tool for test isolation: patch in a fake, run the test, and the registry
// is guaranteed to come back exactly as it was.
//
// A patcher is not reentrant: Apply fails with ErrPatchActive until the
// restore function has run. Overlapping patchers over the same keys are not
// supported.
type Patcher[T any] struct {
	mu  sync.Mutex
	cfg config

	// id correlates apply/restore log lines for one patch.
	id string

	registry MutableRegistry[T]
	entries  []patchEntry[T]
	saved    []savedEntry[T]
	applied  bool
}

// NewPatcher creates a patcher over the given mutable registry.
//
// Example:
//
//	p := regkit.NewPatcher(reg).Set("water", meowth)
//	restore, err := p.Apply()
//	if err != nil { ... }
//	defer restore()
func NewPatcher[T any](registry MutableRegistry[T], opts ...Option) *Patcher[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Patcher[T]{
		cfg:      cfg,
		id:       uuid.NewString(),
		registry: registry,
	}
}

// Add queues classes whose keys are derived from the registry's attribute
// policy, exactly as RegisterClass would derive them. Apply fails with a
// ConfigError if the registry has no policy.
//
// An Add entry targeting the same key as an earlier Set entry overrides it.
func (p *Patcher[T]) Add(classes ...*Class[T]) *Patcher[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, class := range classes {
		p.entries = append(p.entries, patchEntry[T]{derive: true, class: class})
	}
	return p
}

// Set queues a class under an explicit key.
func (p *Patcher[T]) Set(key string, class *Class[T]) *Patcher[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, patchEntry[T]{key: key, class: class})
	return p
}

// Apply installs the queued replacements, saving the prior class (or its
// absence) for every target key. The returned restore function undoes the
// patch in reverse application order; it is safe to call from a defer, so
// restoration runs on error and panic paths alike. Restore is idempotent.
//
// If any individual installation fails, the keys already patched are rolled
// back before Apply returns the error.
func (p *Patcher[T]) Apply() (restore func(), err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.applied {
		return nil, ErrPatchActive
	}

	targets, err := p.resolveTargets()
	if err != nil {
		return nil, err
	}

	p.saved = p.saved[:0]
	keys := make([]string, 0, len(targets))

	for _, t := range targets {
		prev, err := p.snapshotKey(t.key)
		if err != nil {
			p.rollback()
			return nil, err
		}

		// Clear the slot first so unique-mode registries accept the patch.
		if prev != nil {
			if _, err := p.registry.Unregister(t.key); err != nil {
				p.rollback()
				return nil, err
			}
		}
		if err := p.registry.Register(t.key, t.class); err != nil {
			// Put the displaced class back before reporting failure.
			if prev != nil {
				_ = p.registry.Register(t.key, prev)
			}
			p.rollback()
			return nil, err
		}

		p.saved = append(p.saved, savedEntry[T]{key: t.key, class: prev})
		keys = append(keys, t.key)
	}

	p.applied = true
	observability.LogPatchApply(p.cfg.logger, p.id, keys)
	return p.restore, nil
}

// Do applies the patch, runs fn, and restores the registry afterwards even
// if fn returns an error or panics.
func (p *Patcher[T]) Do(fn func() error) error {
	restore, err := p.Apply()
	if err != nil {
		return err
	}
	defer restore()
	return fn()
}

// resolveTargets turns the queued entries into (canonical key, class) pairs,
// deriving keys for Add entries. Later entries for the same canonical key
// replace earlier ones in place.
func (p *Patcher[T]) resolveTargets() ([]patchEntry[T], error) {
	var targets []patchEntry[T]
	index := make(map[string]int)

	for _, e := range p.entries {
		key := e.key
		if e.derive {
			derived, err := deriveAttrKey(p.registry, e.class)
			if err != nil {
				return nil, err
			}
			key = derived
		}
		key = p.registry.LookupKey(key)

		if i, ok := index[key]; ok {
			targets[i].class = e.class
			continue
		}
		index[key] = len(targets)
		targets = append(targets, patchEntry[T]{key: key, class: e.class})
	}
	return targets, nil
}

// snapshotKey returns the class currently under key, or nil when absent.
func (p *Patcher[T]) snapshotKey(key string) (*Class[T], error) {
	class, err := p.registry.GetClass(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return class, nil
}

// restore undoes the applied patch in reverse application order.
func (p *Patcher[T]) restore() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rollback()
	if p.applied {
		p.applied = false
		observability.LogPatchRestore(p.cfg.logger, p.id)
	}
}

// rollback reverts every saved key. Caller must hold p.mu.
func (p *Patcher[T]) rollback() {
	for i := len(p.saved) - 1; i >= 0; i-- {
		s := p.saved[i]
		_, _ = p.registry.Unregister(s.key)
		if s.class != nil {
			_ = p.registry.Register(s.key, s.class)
		}
	}
	p.saved = p.saved[:0]
}

// deriveAttrKey reads the registration key off a class using the registry's
// attribute policy. Shared by Patcher and auto-registration.
func deriveAttrKey[T any](registry MutableRegistry[T], class *Class[T]) (string, error) {
	if class == nil {
		return "", &ConfigError{Reason: "cannot patch a nil class"}
	}
	attr := registry.AttrName()
	if attr == "" {
		return "", &ConfigError{
			Reason: "patching by class requires a registry with an attribute key policy",
		}
	}
	v, ok := class.Attr(attr)
	if !ok {
		return "", &ConfigError{
			Reason: "class " + class.Name + " has no attribute " + attr,
		}
	}
	key, ok := v.(string)
	if !ok {
		return "", &ConfigError{
			Reason: "attribute " + attr + " of class " + class.Name + " is not a string",
		}
	}
	return key, nil
}
