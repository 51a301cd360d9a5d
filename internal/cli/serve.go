package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trafficmap/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		provider string
		noCache  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP",
		Long: `Serve starts an HTTP server. POST a document to /render to get the PNG back,
or add ?format=json for the {"image": ...} wrapper.`,
		Example: `  trafficmap serve --addr :9000
  curl --data-binary @data.json localhost:8080/render > result.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg := c.Config
			fs := cmd.Flags()
			if fs.Changed("addr") {
				cfg.Server.Addr = addr
			}
			if fs.Changed("tiles") {
				cfg.Tiles.Provider = provider
				cfg.Tiles.URL = ""
			}
			if noCache {
				cfg.Cache.Backend = backendNone
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			runner, closeCache, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeCache(); err != nil {
					logger.Warn("close tile cache", "err", err)
				}
			}()

			printInfo("Serving on %s (tiles: %s)", cfg.Server.Addr, runner.Tiles.Provider().Name)
			err = server.New(runner, logger, cfg.PipelineOptions()).ListenAndServe(ctx, cfg.Server.Addr)
			if stderrors.Is(err, context.Canceled) {
				logger.Info("server stopped")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+defaultServerAddr+")")
	cmd.Flags().StringVarP(&provider, "tiles", "t", "", "basemap provider: positron (default), osm, none")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the tile cache")
	return cmd
}
