package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holocron/internal/fixture"
)

func newDropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop",
		Short: "Drop the fixture tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.attach(cmd.Context(), false, false, nil)
			if err != nil {
				return err
			}
			defer b.Detach()
			db, err := b.DB()
			if err != nil {
				return err
			}
			if err := fixture.Drop(cmd.Context(), db); err != nil {
				return fmt.Errorf("drop: %w", err)
			}
			fmt.Fprintln(a.stdout, "dropped characters and movies")
			return nil
		},
	}
}
