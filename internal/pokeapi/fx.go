package pokeapi

import "go.uber.org/fx"

var Module = fx.Module("pokeapi",
	fx.Provide(NewClient),
)
