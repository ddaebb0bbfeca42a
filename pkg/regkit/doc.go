/*
Package regkit provides class registries: mappings from lookup keys to
constructible type descriptors, with on-demand instantiation.

# Overview

regkit is a small toolkit for the registry/factory pattern. Calling code
associates string keys with classes (a constructor plus class-level
attributes), then constructs instances by key. On top of the core mapping it
provides deterministic and custom-sorted iteration, instance caching
(singleton-per-key service location), reversible patching for test
isolation, automatic registration of concrete derived classes, and plugin
discovery from manifests or in-process groups.

# Basic Usage

Create a registry, register classes, construct by key:

	type Widget interface{ Render() string }

	reg := regkit.New[Widget]()
	reg.MustRegister("button", &regkit.Class[Widget]{
	    Name: "Button",
	    New: func(args ...any) (Widget, error) {
	        return &Button{}, nil
	    },
	})

	w, err := reg.Get("button")
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(w.Render())

Arguments passed to Get are forwarded verbatim to the constructor, and
constructor errors propagate unchanged.

# Attribute-Derived Keys

A registry built with WithAttrKey reads the registration key off a class
attribute, so classes carry their own keys:

	reg := regkit.New[Pokemon](regkit.WithAttrKey("element"))
	reg.MustRegisterClass(&regkit.Class[Pokemon]{
	    Name:  "Bulbasaur",
	    New:   newBulbasaur,
	    Attrs: map[string]any{"element": "grass"},
	})

	c, _ := reg.GetClass("grass") // the Bulbasaur class

# Key Canonicalization

WithKeyFunc installs a canonicalization function applied on both the
registration and lookup paths, which is how key aliases are supported:

	reg := regkit.New[Widget](regkit.WithKeyFunc(func(key string) string {
	    if key == "bird" {
	        return "flying"
	    }
	    return key
	}))

After registering under "flying", both reg.Get("flying") and reg.Get("bird")
resolve the same class.

# Collision Policy

By default the last registration for a key wins. WithUnique makes the
registry reject a key already bound to a different class with a
CollisionError, leaving the existing entry untouched. Re-registering the
identical *Class is never a collision.

# Sorted Registries

SortedClassRegistry iterates in a deterministic sort order instead of
registration order. Sort by a class attribute or supply a comparator:

	reg, _ := regkit.NewSortedByAttr[Pokemon]("weight")
	// reg.Keys() ascends by each class's "weight" attribute.

The order is recomputed at each iteration call, so it always reflects
current registry contents.

# Instance Caching

InstanceCache memoizes constructed instances per key:

	cache := regkit.NewInstanceCache(reg)
	a, _ := cache.Get("grass")
	b, _ := cache.Get("grass")
	// a and b are the identical instance

On a cache hit the arguments are ignored: the instance keeps the arguments
from its first construction. The cache holds one instance per key, not one
per (key, args).

# Patching

Patcher temporarily replaces registry entries and guarantees restoration:

	p := regkit.NewPatcher(reg).Set("water", meowth)
	restore, err := p.Apply()
	if err != nil {
	    t.Fatal(err)
	}
	defer restore()
	// reg resolves "water" to meowth until restore runs,
	// then the prior class (or absence) is exactly restored.

Restoration runs in reverse application order and is safe on panic paths via
defer. Patcher.Do wraps apply/run/restore in one call.

# Auto-Registration

AutoRegister returns a Base that registers concrete derived classes as they
are defined. A class is abstract — and skipped — iff at least one required
operation has no implementation in its Ops set:

	base, _ := regkit.AutoRegister(commands, "Run")
	base.MustDefine(printCommand)   // has Ops["Run"] -> registered
	base.MustDefine(abstractHelper) // missing Ops["Run"] -> skipped

# Plugin Discovery

The plugin subpackage resolves classes advertised by other packages, either
through in-process groups populated at init time or through YAML manifests.
A broken plugin entry surfaces as a per-entry LoadError and never prevents
the remaining entries from loading. See the plugin package documentation.

# Error Handling

Failures are typed and unwrap to sentinels for errors.Is:

	_, err := reg.GetClass("missing")
	if errors.Is(err, regkit.ErrNotFound) {
	    // handle unknown key
	}

	var collision *regkit.CollisionError[Widget]
	if errors.As(err, &collision) {
	    log.Printf("key %s held by %s", collision.Key, collision.Existing.Name)
	}

# Thread Safety

  - ClassRegistry and SortedClassRegistry are safe for concurrent use
  - InstanceCache serializes access; a key's instance is built at most once
  - Patcher.Apply/restore are serialized, but overlapping patchers over the
    same keys are not supported
  - Class values must not be mutated while registered

# Subpackages

  - plugin: discovery of registrable classes from groups and manifests
  - observability: opt-in slog logging, OTel metrics and tracing helpers
*/
package regkit
