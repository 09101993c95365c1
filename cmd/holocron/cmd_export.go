package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holocron/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir | s3://bucket/prefix>",
		Short: "Write the fixture as JSON Lines plus a manifest",
		Long: `Export writes movies.jsonl, characters.jsonl and manifest.json to a local
directory or an S3 bucket. S3 settings (region, endpoint, path_style) come
from the s3 section of config.yaml or HOLOCRON_S3_* variables; credentials
come from the standard AWS chain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sink, err := export.OpenSink(ctx, args[0], export.S3Config{
				Region:    a.cfg.GetString(cfgKeyS3Region),
				Endpoint:  a.cfg.GetString(cfgKeyS3Endpoint),
				PathStyle: a.cfg.GetBool(cfgKeyS3PathStyle),
			})
			if err != nil {
				return err
			}

			b, err := a.attach(ctx, false, false, nil)
			if err != nil {
				return err
			}
			defer b.Detach()
			c, err := openCatalog(b)
			if err != nil {
				return err
			}

			ex := export.Exporter{Catalog: c}
			m, err := ex.Export(ctx, sink)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(a.stdout, "exported %d movies and %d characters to %s (export %s)\n",
				m.Movies, m.Characters, args[0], m.ID)
			return nil
		},
	}
}
