package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pokedex/internal/clock"
	"github.com/smallbiznis/pokedex/internal/config"
	"github.com/smallbiznis/pokedex/internal/lock"
	"github.com/smallbiznis/pokedex/internal/migration"
	"github.com/smallbiznis/pokedex/internal/observability"
	"github.com/smallbiznis/pokedex/internal/pokeapi"
	"github.com/smallbiznis/pokedex/internal/pokemon"
	"github.com/smallbiznis/pokedex/internal/seed"
	"github.com/smallbiznis/pokedex/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pokedex",
		Short:         "Pokemon catalog service",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCmd(), newSeedCmd())
	return root
}

// coreModules is the graph shared by every command.
func coreModules() fx.Option {
	return fx.Options(
		// Core Infrastructure
		config.Module,
		observability.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		lock.Module,

		// Functional Domains
		pokemon.Module,
		pokeapi.Module,
		seed.Module,
	)
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
