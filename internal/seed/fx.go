package seed

import (
	"github.com/smallbiznis/pokedex/internal/lock"
	"github.com/smallbiznis/pokedex/internal/pokeapi"
	"go.uber.org/fx"
)

var Module = fx.Module("seed.service",
	fx.Provide(
		func(c *pokeapi.Client) Source { return c },
		provideLocker,
		New,
	),
)

func provideLocker(l *lock.Locker) Locker {
	if !l.Enabled() {
		return nil
	}
	return l
}
