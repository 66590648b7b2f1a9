package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/complyviz/complyviz/pkg/config"
)

// newCacheCmd creates the cache management command.
func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the pipeline cache",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")

	cmd.AddCommand(newCacheClearCmd(&configPath))
	cmd.AddCommand(newCachePathCmd(&configPath))

	return cmd
}

// newCacheClearCmd creates the "cache clear" subcommand.
func newCacheClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached pipeline entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.CacheFile {
				printWarning("Cache backend is %q; clear only manages the file backend", cfg.Cache.Backend)
				return nil
			}
			dir := cfg.Cache.Dir

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			count := 0
			err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil || path == dir {
					return nil
				}
				if !info.IsDir() {
					if err := os.Remove(path); err == nil {
						count++
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			// Clean up empty shard subdirectories
			_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil || path == dir {
					return nil
				}
				if info.IsDir() {
					os.Remove(path)
				}
				return nil
			})

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// newCachePathCmd creates the "cache path" subcommand.
func newCachePathCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			fmt.Println(cfg.Cache.Dir)
			return nil
		},
	}
}
