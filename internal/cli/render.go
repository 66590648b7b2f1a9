package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/complyviz/complyviz/pkg/config"
	"github.com/complyviz/complyviz/pkg/pipeline"
)

// newRenderCmd creates the render command.
func newRenderCmd() *cobra.Command {
	var (
		configPath string
		seed       string
		mode       string
		expanded   []string
		collapsed  []string
		formats    []string
		outDir     string
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate visualization artifacts",
		Long: `Render runs the full fetch, layout, and render pipeline and writes one
artifact per requested format into the output directory.

Supported formats: svg, png, dot, json.`,
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
			result, err := runner.Execute(cmd.Context(), pipeline.Options{
				Mode:           mode,
				Expanded:       expanded,
				CollapsedLanes: collapsed,
				Formats:        formats,
				Refresh:        refresh,
				Logger:         logger,
			})
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Rendered %d formats", len(result.Artifacts)))

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			printSuccess("Artifacts written")
			for _, format := range formats {
				data, ok := result.Artifacts[format]
				if !ok {
					continue
				}
				path := filepath.Join(outDir, "rulebase."+format)
				if err := os.WriteFile(path, data, 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printFile(path)
			}
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.FetchHit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&seed, "seed", "", "JSON seed file for the memory store")
	cmd.Flags().StringVarP(&mode, "mode", "m", pipeline.ModeColumns, "layout mode (columns or lanes)")
	cmd.Flags().StringSliceVarP(&expanded, "expand", "e", nil, "group IDs to expand (columns mode)")
	cmd.Flags().StringSliceVar(&collapsed, "collapse", nil, "lane names to collapse (lanes mode)")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{pipeline.FormatSVG}, "output formats (svg, png, dot, json)")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the graph cache")

	return cmd
}
