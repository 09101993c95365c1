package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holocron/internal/fixture"
	"github.com/mesh-intelligence/holocron/internal/metrics"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		asJSON      bool
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the loaded fixture is intact",
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

			report, err := fixture.Verify(cmd.Context(), db, b.Variant())
			if err != nil && !errors.Is(err, types.ErrFixtureInvalid) {
				return fmt.Errorf("verify: %w", err)
			}
			if metricsFile != "" {
				m := metrics.New(false)
				m.ObserveVerify(report)
				if werr := m.WriteTextfile(metricsFile); werr != nil {
					return fmt.Errorf("write metrics: %w", werr)
				}
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				if eerr := enc.Encode(report); eerr != nil {
					return eerr
				}
			} else {
				printReport(a, report)
			}
			if !report.OK() {
				return errExit
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	return cmd
}

func printReport(a *app, r fixture.Report) {
	pass := color.New(color.FgGreen).Sprint("PASS")
	fail := color.New(color.FgRed).Sprint("FAIL")
	for _, c := range r.Checks {
		status := pass
		if !c.Passed {
			status = fail
		}
		fmt.Fprintf(a.stdout, "%s  %-36s %s\n", status, c.Name, c.Detail)
	}
	if r.OK() {
		fmt.Fprintf(a.stdout, "fixture ok (%s, %d checks)\n", r.Variant, len(r.Checks))
		return
	}
	fmt.Fprintf(a.stderr, "%s: %d of %d checks failed\n",
		color.New(color.FgRed, color.Bold).Sprint("fixture invalid"), len(r.Failed()), len(r.Checks))
}
