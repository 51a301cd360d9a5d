package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trafficmap/pkg/buildinfo"
	"github.com/matzehuels/trafficmap/pkg/cache"
	"github.com/matzehuels/trafficmap/pkg/observability"
	"github.com/matzehuels/trafficmap/pkg/pipeline"
	"github.com/matzehuels/trafficmap/pkg/tiles"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "trafficmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level == log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.Install(observability.Hooks{Pipeline: hooks, Cache: hooks, HTTP: hooks})
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
// Run without a subcommand it renders ./data.json into ./result_data/.
func (c *CLI) RootCommand() *cobra.Command {
	var flags renderFlags

	root := &cobra.Command{
		Use:   appName,
		Short: "Trafficmap renders network load onto a static map",
		Long: `Trafficmap draws a network graph with precomputed geometry onto a web map,
colors every link by its load and writes the result as a PNG image.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, &flags)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+defaultConfigFile+" if present)")
	flags.register(root)

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for the configured tile provider.
// The returned close function releases the tile cache.
func (c *CLI) newRunner(ctx context.Context, cfg Config) (*pipeline.Runner, func() error, error) {
	src, closeFn, err := c.newSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.NewRunner(src, c.Logger), closeFn, nil
}

func (c *CLI) newSource(ctx context.Context, cfg Config) (tiles.Source, func() error, error) {
	p, err := cfg.Provider()
	if err != nil {
		return nil, nil, err
	}
	if p.Offline() {
		return tiles.NewSource(p), func() error { return nil }, nil
	}

	tc, err := c.newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	opts := []tiles.Option{
		tiles.WithCache(tc, cfg.Cache.TTL),
		tiles.WithLogger(c.Logger),
	}
	if cfg.Cache.Namespace != "" {
		opts = append(opts, tiles.WithKeyer(cache.NewScopedKeyer(nil, cfg.Cache.Namespace+":")))
	}
	if cfg.Tiles.UserAgent != "" {
		opts = append(opts, tiles.WithUserAgent(cfg.Tiles.UserAgent))
	}
	return tiles.NewSource(p, opts...), tc.Close, nil
}

// newCache opens the configured cache backend. An unusable file cache
// directory falls back to no caching.
func (c *CLI) newCache(ctx context.Context, cc CacheConfig) (cache.Cache, error) {
	switch cc.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cc.RedisAddr, Prefix: defaultRedisPrefix})
	}
	dir, err := c.cacheDir(cc)
	if err != nil {
		c.Logger.Warn("tile cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir(cc CacheConfig) (string, error) {
	if cc.Dir != "" {
		return cc.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/trafficmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
