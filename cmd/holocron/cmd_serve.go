package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holocron/internal/metrics"
	"github.com/mesh-intelligence/holocron/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr string
		seed bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fixture as a read-only JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New(true)
			b, err := a.attach(ctx, seed, seed, m)
			if err != nil {
				return err
			}
			defer b.Detach()
			c, err := openCatalog(b)
			if err != nil {
				return err
			}

			srv := server.New(c, server.WithMetrics(m.Handler()), server.WithLogger(a.logger))
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&seed, "seed", false, "reload the fixture (with reset) before serving")
	return cmd
}

