package regkit

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weighted builds a class carrying a "weight" attribute for sort tests.
func weighted(name string, weight int) *Class[pokemon] {
	return &Class[pokemon]{
		Name:  name,
		New:   func(args ...any) (pokemon, error) { return &basicPokemon{species: name}, nil },
		Attrs: map[string]any{"weight": weight},
	}
}

func TestNewSortedByAttrRequiresAttr(t *testing.T) {
	_, err := NewSortedByAttr[pokemon]("")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewSortedFuncRequiresComparator(t *testing.T) {
	_, err := NewSortedFunc[pokemon](nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSortedByAttr(t *testing.T) {
	reg, err := NewSortedByAttr[pokemon]("weight")
	require.NoError(t, err)

	reg.MustRegister("rock", weighted("Geodude", 1000))
	reg.MustRegister("fighting", weighted("Machop", 75))
	reg.MustRegister("grass", weighted("Oddish", 15))

	assert.Equal(t, []string{"grass", "fighting", "rock"}, reg.Keys())
}

func TestSortedByAttrTieBreaksOnKey(t *testing.T) {
	reg, err := NewSortedByAttr[pokemon]("weight")
	require.NoError(t, err)

	reg.MustRegister("zubat", weighted("Zubat", 75))
	reg.MustRegister("machop", weighted("Machop", 75))

	assert.Equal(t, []string{"machop", "zubat"}, reg.Keys())
}

func TestSortedOrderReflectsMutations(t *testing.T) {
	reg, err := NewSortedByAttr[pokemon]("weight")
	require.NoError(t, err)

	reg.MustRegister("rock", weighted("Geodude", 1000))
	reg.MustRegister("grass", weighted("Oddish", 15))
	assert.Equal(t, []string{"grass", "rock"}, reg.Keys())

	// The order is recomputed at each call, never cached stale.
	reg.MustRegister("fighting", weighted("Machop", 75))
	assert.Equal(t, []string{"grass", "fighting", "rock"}, reg.Keys())

	_, err = reg.Unregister("grass")
	require.NoError(t, err)
	assert.Equal(t, []string{"fighting", "rock"}, reg.Keys())
}

func TestSortedReverse(t *testing.T) {
	reg, err := NewSortedByAttr[pokemon]("weight", WithReverse())
	require.NoError(t, err)

	reg.MustRegister("grass", weighted("Oddish", 15))
	reg.MustRegister("rock", weighted("Geodude", 1000))
	reg.MustRegister("fighting", weighted("Machop", 75))

	assert.Equal(t, []string{"rock", "fighting", "grass"}, reg.Keys())
}

func TestSortedFunc(t *testing.T) {
	// Order by class name, descending.
	reg, err := NewSortedFunc[pokemon](func(a, b Entry[pokemon]) int {
		return -cmp.Compare(a.Class.Name, b.Class.Name)
	})
	require.NoError(t, err)

	reg.MustRegister("grass", weighted("Oddish", 15))
	reg.MustRegister("rock", weighted("Geodude", 1000))
	reg.MustRegister("fighting", weighted("Machop", 75))

	assert.Equal(t, []string{"grass", "fighting", "rock"}, reg.Keys())
}

func TestSortedFuncStableOnTies(t *testing.T) {
	reg, err := NewSortedFunc[pokemon](func(a, b Entry[pokemon]) int {
		return 0 // everything ties
	})
	require.NoError(t, err)

	reg.MustRegister("fire", weighted("Charmander", 85))
	reg.MustRegister("water", weighted("Squirtle", 90))
	reg.MustRegister("grass", weighted("Bulbasaur", 69))

	// Ties keep registration order.
	assert.Equal(t, []string{"fire", "water", "grass"}, reg.Keys())
}

func TestSortedClasses(t *testing.T) {
	reg, err := NewSortedByAttr[pokemon]("weight")
	require.NoError(t, err)

	heavy := weighted("Geodude", 1000)
	light := weighted("Oddish", 15)
	reg.MustRegister("rock", heavy)
	reg.MustRegister("grass", light)

	assert.Equal(t, []*Class[pokemon]{light, heavy}, reg.Classes())
}

func TestSortedRange(t *testing.T) {
	reg, err := NewSortedByAttr[pokemon]("weight")
	require.NoError(t, err)

	reg.MustRegister("rock", weighted("Geodude", 1000))
	reg.MustRegister("grass", weighted("Oddish", 15))

	var seen []string
	reg.Range(func(key string, class *Class[pokemon]) bool {
		seen = append(seen, key)
		return true
	})
	assert.Equal(t, []string{"grass", "rock"}, seen)
}

func TestSortedKeepsWriteContract(t *testing.T) {
	reg, err := NewSortedByAttr[pokemon]("weight", WithUnique(), WithAttrKey("element"))
	require.NoError(t, err)

	bulbasaur := newPokemonClass("Bulbasaur", "bulbasaur", "grass")
	bulbasaur.SetAttr("weight", 69)
	require.NoError(t, reg.RegisterClass(bulbasaur))

	other := newPokemonClass("Oddish", "oddish", "grass")
	other.SetAttr("weight", 15)
	assert.ErrorIs(t, reg.RegisterClass(other), ErrCollision)
}

func TestCompareAttrValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"strings", "bug", "rock", -1},
		{"ints", 15, 1000, -1},
		{"mixed numeric kinds", int64(75), 15.5, 1},
		{"equal ints", 7, 7, 0},
		{"fallback to formatted", true, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareAttrValues(tt.a, tt.b)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}
