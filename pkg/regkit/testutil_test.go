package regkit

// Shared test fixtures. The pokemon domain keeps the tests readable:
// classes carry an "element" attribute used for attribute-derived keys and
// a "weight" attribute used for sort ordering.

type pokemon interface {
	Species() string
}

type basicPokemon struct {
	species string
	trainer string
}

func (p *basicPokemon) Species() string { return p.species }

// newPokemonClass builds a class whose constructor accepts an optional
// trainer name as its first argument.
func newPokemonClass(name, species, element string) *Class[pokemon] {
	return &Class[pokemon]{
		Name: name,
		New: func(args ...any) (pokemon, error) {
			p := &basicPokemon{species: species}
			if len(args) > 0 {
				p.trainer = args[0].(string)
			}
			return p, nil
		},
		Attrs: map[string]any{"element": element},
	}
}
