package plugin

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/regkit/pkg/regkit"
)

// Resolver turns a manifest ref into a class. Hosts supply one when they
// create a ManifestDiscoverer; it is where "a string in a file" becomes "a
// constructible class", and its failures are isolated per entry.
type Resolver[T any] func(ref string) (*regkit.Class[T], error)

// manifestFile is the on-disk manifest schema:
//
//	groups:
//	  pokemon:
//	    - name: grass
//	      ref: pokemon/bulbasaur
type manifestFile struct {
	Groups map[string][]manifestEntry `yaml:"groups"`
}

type manifestEntry struct {
	Name string `yaml:"name"`
	Ref  string `yaml:"ref"`
}

// ManifestDiscoverer discovers plugin entries from YAML manifest files.
// Several manifests can contribute entries to the same group; files are
// read in the order given, and entries keep file order.
type ManifestDiscoverer[T any] struct {
	resolver Resolver[T]
	paths    []string
}

// Compile-time interface check.
var _ Discoverer[any] = (*ManifestDiscoverer[any])(nil)

// NewManifestDiscoverer creates a discoverer over the given manifest paths.
func NewManifestDiscoverer[T any](resolver Resolver[T], paths ...string) *ManifestDiscoverer[T] {
	return &ManifestDiscoverer[T]{
		resolver: resolver,
		paths:    paths,
	}
}

// Discover reads every manifest and resolves the entries advertised under
// group. Resolver failures (and nil results) become per-entry LoadErrors;
// an unreadable or unparsable manifest fails the whole pass, since no
// entries can be trusted from it.
func (d *ManifestDiscoverer[T]) Discover(ctx context.Context, group string) ([]Entry[T], error) {
	if d.resolver == nil {
		return nil, &regkit.ConfigError{Reason: "manifest discovery requires a resolver"}
	}

	var entries []Entry[T]
	for _, path := range d.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, err := readManifest(path)
		if err != nil {
			return nil, err
		}

		for _, me := range m.Groups[group] {
			entries = append(entries, d.resolve(group, me))
		}
	}
	return entries, nil
}

// resolve turns one manifest entry into a discovery Entry, capturing any
// resolver failure in Entry.Err.
func (d *ManifestDiscoverer[T]) resolve(group string, me manifestEntry) Entry[T] {
	class, err := d.resolver(me.Ref)
	if err == nil && class == nil {
		err = fmt.Errorf("resolver returned no class for ref %q", me.Ref)
	}
	if err != nil {
		return Entry[T]{
			Name: me.Name,
			Err:  &LoadError{Group: group, Name: me.Name, Err: err},
		}
	}
	return Entry[T]{Name: me.Name, Class: class}
}

// readManifest loads and parses one manifest file.
func readManifest(path string) (*manifestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifestFile
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
