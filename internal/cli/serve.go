package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/hexplanner/pkg/metrics"
	"github.com/matzehuels/hexplanner/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner HTTP API",
		Long: `Serve the planner over HTTP. Plans are kept in the configured store,
rendered artifacts in the configured cache, and Prometheus metrics are
exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			ws, err := c.workspace()
			if err != nil {
				return err
			}
			plans, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer plans.Close()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			m := metrics.New()
			m.Install()

			srv := server.New(ws, plans, runner,
				server.WithLogger(c.Logger),
				server.WithMetrics(m.Handler()))

			printSuccess("Serving %s", StyleHighlight.Render(addr))
			printDetail("Store: %s  Cache: %s", cfg.Store.Backend, cfg.Cache.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}
