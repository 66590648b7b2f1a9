package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/complyviz/complyviz/pkg/config"
	"github.com/complyviz/complyviz/pkg/pipeline"
	"github.com/complyviz/complyviz/pkg/render"
)

// newLayoutCmd creates the layout command.
func newLayoutCmd() *cobra.Command {
	var (
		configPath string
		seed       string
		mode       string
		expanded   []string
		collapsed  []string
		output     string
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute a layout and print the render payload",
		Long: `Layout fetches the rule base, runs the layout engine, and writes the
positioned render payload as JSON.

In columns mode, --expand marks country groups as expanded; trigger edges
are rerouted to their member countries. In lanes mode, --collapse shrinks
named admin lanes to stubs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if seed != "" {
				cfg.Store.Seed = seed
			}

			runner, err := buildRunner(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer runner.Close(cmd.Context())

			p := newProgress(logger)
			opts := pipeline.Options{
				Mode:           mode,
				Expanded:       expanded,
				CollapsedLanes: collapsed,
				Refresh:        refresh,
				Logger:         logger,
			}
			doc, fetchHit, err := runner.FetchWithCacheInfo(cmd.Context(), opts)
			if err != nil {
				return err
			}
			lay, _, err := runner.ComputeLayoutWithCacheInfo(cmd.Context(), doc, opts)
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Computed %s layout", opts.Mode))

			data, err := render.MarshalPayload(lay)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Println(string(data))
			} else {
				if err := os.WriteFile(output, data, 0644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printSuccess("Layout written")
				printFile(output)
			}
			printStats(len(lay.Nodes), len(lay.Edges), fetchHit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&seed, "seed", "", "JSON seed file for the memory store")
	cmd.Flags().StringVarP(&mode, "mode", "m", pipeline.ModeColumns, "layout mode (columns or lanes)")
	cmd.Flags().StringSliceVarP(&expanded, "expand", "e", nil, "group IDs to expand (columns mode)")
	cmd.Flags().StringSliceVar(&collapsed, "collapse", nil, "lane names to collapse (lanes mode)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the graph cache")

	return cmd
}
