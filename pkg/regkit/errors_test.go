package regkit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Key: "ghost"}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestCollisionError(t *testing.T) {
	existing := newPokemonClass("Charmander", "charmander", "fire")
	incoming := newPokemonClass("Vulpix", "vulpix", "fire")
	err := &CollisionError[pokemon]{Key: "fire", Existing: existing, Incoming: incoming}

	assert.ErrorIs(t, err, ErrCollision)
	assert.Contains(t, err.Error(), "Charmander")
	assert.Contains(t, err.Error(), "Vulpix")

	var collision *CollisionError[pokemon]
	assert.ErrorAs(t, error(err), &collision)
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Reason: "no attribute key policy"}
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "no attribute key policy")
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrCollision, ErrConfiguration, ErrEmptyKey, ErrPatchActive}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b))
		}
	}
}
