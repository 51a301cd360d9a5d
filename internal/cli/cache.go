package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trafficmap/pkg/cache"
	"github.com/matzehuels/trafficmap/pkg/errors"
)

// cacheCommand creates the tile cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the basemap tile cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached tiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cc := c.Config.Cache
			if cc.Backend == backendNone {
				printInfo("Tile cache is disabled")
				return nil
			}

			tc, err := c.newCache(ctx, cc)
			if err != nil {
				return err
			}
			defer tc.Close()

			clearer, ok := tc.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "cache backend %q cannot be cleared", cc.Backend)
			}
			n, err := clearer.Clear(ctx)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached tiles", n)
			if fc, ok := tc.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			} else {
				printDetail("Redis: %s", cc.RedisAddr)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the tile cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := c.Config.Cache
			switch cc.Backend {
			case backendRedis:
				printKeyValue("redis", cc.RedisAddr)
				return nil
			case backendNone:
				printWarning("Tile cache is disabled (cache.backend = none)")
				return nil
			}
			dir, err := c.cacheDir(cc)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
