package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holocron/internal/metrics"
)

func newLoadCmd(a *app) *cobra.Command {
	var (
		reset       bool
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Create the fixture tables and seed them",
		Long: `Load runs the fixture script in one transaction. The generic variant
refuses to load over existing tables unless --reset is given; the Postgres
variant always replaces them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := metrics.New(false)
			b, err := a.attach(cmd.Context(), true, reset, m)
			if metricsFile != "" {
				if werr := m.WriteTextfile(metricsFile); werr != nil {
					a.logger.Warn("writing metrics textfile failed", "path", metricsFile, "error", werr)
				}
			}
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			defer b.Detach()

			report, _ := b.LastLoad()
			fmt.Fprintf(a.stdout, "loaded %d movies and %d characters (%s, run %s)\n",
				report.Movies, report.Characters, report.Variant, report.RunID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop existing fixture tables first")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	return cmd
}
