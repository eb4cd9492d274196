package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vlanimate/internal/server"
	"github.com/matzehuels/vlanimate/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compiler over HTTP",
		Long: `Serve the compiler over HTTP:

  POST /v1/compile      compile a chart, store and return the graph
  POST /v1/elaborate    return the elaborated chart
  GET  /v1/graphs/{id}  return a stored graph
  GET  /healthz         liveness

Compiled graphs are stored in MongoDB when [server] mongo_uri is set and in
memory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := st.Close(closeCtx); err != nil {
					c.Logger.Warn("close store", "error", err)
				}
			}()

			printInfo("Listening on %s", StyleHighlight.Render(addr))
			return server.New(runner, st, c.pipelineOptions(), c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default [server] addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// newStore returns the configured graph store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if uri := c.cfg.Server.MongoURI; uri != "" {
		c.Logger.Debug("connecting to mongodb", "database", c.cfg.Server.MongoDatabase)
		return store.NewMongo(ctx, uri, c.cfg.Server.MongoDatabase)
	}
	return store.NewMemory(), nil
}
