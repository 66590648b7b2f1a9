package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the complyviz CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (serve, layout,
// render, explore, cache), configures logging based on the --verbose flag,
// and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "complyviz",
		Short:        "Complyviz visualizes compliance rule bases as layered graphs",
		Long:         `Complyviz renders a compliance rule base - country groups, transfer rules, and admin vocabulary - as a deterministic column layout with expandable groups, either as static artifacts or through a live HTTP API.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("complyviz %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newExploreCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(context.Background())
}
