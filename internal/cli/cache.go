package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transitgit/pkg/cache"
	"github.com/matzehuels/transitgit/pkg/config"
	"github.com/matzehuels/transitgit/pkg/pipeline"
)

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.CacheConfig, noCache bool) (*pipeline.Runner, error) {
	store, keyer, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache opens the configured backend. An unreachable Redis server is
// reported and replaced by NullCache so a run never fails on the cache.
func (c *CLI) newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil, nil
	}

	switch cfg.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if stderrors.Is(err, cache.ErrUnavailable) {
			printWarning("Redis cache unavailable, continuing without cache")
			c.Logger.Debug("redis unavailable", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache(), nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, cfg.Prefix), nil
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			printWarning("Cache directory unavailable, continuing without cache")
			c.Logger.Debug("cache dir unavailable", "err", err)
			return cache.NewNullCache(), nil, nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, err
		}
		return fc, nil, nil
	}
}

// =============================================================================
// Cache Commands
// =============================================================================

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the feed download cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all downloaded feeds from the file cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := cfg.Cache.CacheDir()
			if err != nil {
				return err
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := cfg.Cache.CacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
