package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/pokedex/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newSeedCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the catalog with the PokeAPI listing and exit",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			var seeder *seed.Service
			app := fx.New(
				coreModules(),
				fx.Populate(&seeder),
			)
			if err := app.Err(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
				defer stop()
				err = errors.Join(err, app.Stop(stopCtx))
			}()

			msg, err := seeder.ExecuteSeed(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "deadline for the whole seed run")
	return cmd
}
