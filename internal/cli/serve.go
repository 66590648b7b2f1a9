package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/complyviz/complyviz/internal/api"
	"github.com/complyviz/complyviz/pkg/config"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		seed       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve runs the visualization API over the configured store and cache.

The server exposes the domain graph, layout computation, rule-base
mutations, and a server-sent event stream that notifies clients after
every mutation. It shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if seed != "" {
				cfg.Store.Seed = seed
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, err := buildRunner(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := runner.Close(context.Background()); err != nil {
					logger.Warn("close runner", "err", err)
				}
			}()

			logger.Info("starting server",
				"store", cfg.Store.Backend,
				"cache", cfg.Cache.Backend)
			return api.NewServer(runner, logger).Serve(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&seed, "seed", "", "JSON seed file for the memory store")

	return cmd
}
