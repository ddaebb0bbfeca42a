// Package plugin discovers registrable classes advertised by other packages
// and exposes them through a read-only registry.
//
// Discovery is split from registration: a Discoverer enumerates the
// (name, class) pairs advertised under a group, and a plugin Registry turns
// one (discoverer, group) pair into a regkit.Registry with lazy loading and
// a local cache. The registry is deliberately not mutable — its contents are
// whatever the discovery source advertises.
//
// # Discovery Sources
//
// GroupSet is the in-process source: plugin packages advertise classes from
// their init functions, and the host discovers them by group. This is the Go
// analog of entry-point metadata — the same shape as database/sql driver
// registration, with named groups:
//
//	var Pokedex = plugin.NewGroupSet[Pokemon]()
//
//	// in a plugin package:
//	func init() {
//	    host.Pokedex.Add("pokemon", "grass", bulbasaur)
//	}
//
//	// in the host:
//	reg := plugin.NewRegistry[Pokemon](host.Pokedex, "pokemon")
//
// ManifestDiscoverer reads YAML manifests instead, resolving each entry's
// ref string through a host-supplied Resolver:
//
//	groups:
//	  pokemon:
//	    - name: grass
//	      ref: pokemon/bulbasaur
//
// # Failure Isolation
//
// One broken plugin must not break the rest. An entry whose class cannot be
// resolved is reported as a per-entry LoadError: it is skipped by Keys and
// Classes, GetClass for its name returns the LoadError, and every other
// entry loads normally. LoadErrors() exposes the failures for inspection.
//
// # Branding
//
// A registry built with WithAttrName brands every loaded class with its key
// (class.Attrs[name] = key, overwriting any prior value) and calls
// SetRegistryKey on every constructed instance implementing
// regkit.Brandable, enabling reverse lookup from an object to its key.
package plugin
