package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holocron/internal/fixture"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

func newSQLCmd(a *app) *cobra.Command {
	var schemaOnly, seedOnly bool
	cmd := &cobra.Command{
		Use:       "sql <generic|postgres>",
		Short:     "Print the embedded fixture script",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(types.VariantGeneric), string(types.VariantPostgres)},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := types.ParseVariant(args[0])
			if err != nil {
				return err
			}
			if schemaOnly && seedOnly {
				return fmt.Errorf("%w: --schema and --seed are exclusive", errUsage)
			}

			var stmts []string
			switch {
			case schemaOnly:
				stmts, err = fixture.Schema(v)
			case seedOnly:
				stmts, err = fixture.Seed(v)
			default:
				script, serr := fixture.Script(v)
				if serr != nil {
					return serr
				}
				fmt.Fprint(a.stdout, script)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, strings.Join(stmts, ";\n\n")+";")
			return nil
		},
	}
	cmd.Flags().BoolVar(&schemaOnly, "schema", false, "print only the DROP and CREATE statements")
	cmd.Flags().BoolVar(&seedOnly, "seed", false, "print only the INSERT statements")
	return cmd
}
