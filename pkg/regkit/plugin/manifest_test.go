package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/regkit/pkg/regkit"
)

// writeManifest drops a manifest file into a temp dir and returns its path.
func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// creatureResolver maps refs of the form "creature/<species>" to classes.
func creatureResolver(ref string) (*regkit.Class[creature], error) {
	const prefix = "creature/"
	if len(ref) <= len(prefix) || ref[:len(prefix)] != prefix {
		return nil, fmt.Errorf("unknown ref %q", ref)
	}
	species := ref[len(prefix):]
	return newCreatureClass(species, species), nil
}

func TestManifestDiscover(t *testing.T) {
	path := writeManifest(t, "plugins.yaml", `
groups:
  pokemon:
    - name: grass
      ref: creature/bulbasaur
    - name: fire
      ref: creature/charmander
  digimon:
    - name: rookie
      ref: creature/agumon
`)

	d := NewManifestDiscoverer(creatureResolver, path)
	entries, err := d.Discover(context.Background(), "pokemon")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "grass", entries[0].Name)
	require.NotNil(t, entries[0].Class)
	assert.Equal(t, "bulbasaur", entries[0].Class.Name)
	assert.Equal(t, "fire", entries[1].Name)
}

func TestManifestDiscoverMergesFilesInOrder(t *testing.T) {
	first := writeManifest(t, "core.yaml", `
groups:
  pokemon:
    - name: grass
      ref: creature/bulbasaur
`)
	second := writeManifest(t, "extra.yaml", `
groups:
  pokemon:
    - name: fire
      ref: creature/charmander
`)

	d := NewManifestDiscoverer(creatureResolver, first, second)
	entries, err := d.Discover(context.Background(), "pokemon")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "grass", entries[0].Name)
	assert.Equal(t, "fire", entries[1].Name)
}

func TestManifestResolverFailureIsIsolated(t *testing.T) {
	path := writeManifest(t, "plugins.yaml", `
groups:
  pokemon:
    - name: grass
      ref: creature/bulbasaur
    - name: broken
      ref: bogus
    - name: fire
      ref: creature/charmander
`)

	d := NewManifestDiscoverer(creatureResolver, path)
	entries, err := d.Discover(context.Background(), "pokemon")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Healthy entries load around the broken one.
	assert.NoError(t, entries[0].Err)
	assert.NoError(t, entries[2].Err)

	require.Error(t, entries[1].Err)
	assert.Nil(t, entries[1].Class)

	var loadErr *LoadError
	require.ErrorAs(t, entries[1].Err, &loadErr)
	assert.Equal(t, "pokemon", loadErr.Group)
	assert.Equal(t, "broken", loadErr.Name)
}

func TestManifestNilResolverResult(t *testing.T) {
	path := writeManifest(t, "plugins.yaml", `
groups:
  pokemon:
    - name: ghost
      ref: creature/gastly
`)

	nilResolver := func(ref string) (*regkit.Class[creature], error) {
		return nil, nil
	}
	d := NewManifestDiscoverer(nilResolver, path)
	entries, err := d.Discover(context.Background(), "pokemon")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var loadErr *LoadError
	require.ErrorAs(t, entries[0].Err, &loadErr)
	assert.Contains(t, loadErr.Err.Error(), "no class")
}

func TestManifestRequiresResolver(t *testing.T) {
	d := NewManifestDiscoverer[creature](nil)
	_, err := d.Discover(context.Background(), "pokemon")
	assert.ErrorIs(t, err, regkit.ErrConfiguration)
}

func TestManifestMissingFileFailsPass(t *testing.T) {
	d := NewManifestDiscoverer(creatureResolver, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := d.Discover(context.Background(), "pokemon")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManifestMalformedYAMLFailsPass(t *testing.T) {
	path := writeManifest(t, "broken.yaml", "groups: [not: a: mapping\n")

	d := NewManifestDiscoverer(creatureResolver, path)
	_, err := d.Discover(context.Background(), "pokemon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse manifest")
}

func TestManifestUnknownGroup(t *testing.T) {
	path := writeManifest(t, "plugins.yaml", `
groups:
  pokemon:
    - name: grass
      ref: creature/bulbasaur
`)

	d := NewManifestDiscoverer(creatureResolver, path)
	entries, err := d.Discover(context.Background(), "digimon")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestManifestHonorsContextCancellation(t *testing.T) {
	path := writeManifest(t, "plugins.yaml", `
groups:
  pokemon:
    - name: grass
      ref: creature/bulbasaur
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewManifestDiscoverer(creatureResolver, path)
	_, err := d.Discover(ctx, "pokemon")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManifestResolverErrorUnwraps(t *testing.T) {
	cause := errors.New("module not installed")
	path := writeManifest(t, "plugins.yaml", `
groups:
  pokemon:
    - name: grass
      ref: creature/bulbasaur
`)

	failing := func(ref string) (*regkit.Class[creature], error) {
		return nil, cause
	}
	d := NewManifestDiscoverer(failing, path)
	entries, err := d.Discover(context.Background(), "pokemon")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.ErrorIs(t, entries[0].Err, cause)
}
