// Package cli implements the pkgpulse command-line interface.
//
// Commands cover the daily batch flow (fetch, report, run) plus cache and
// configuration management. All commands support --verbose (-v) for
// debug-level logging and --config to point at an alternative YAML file.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pkgpulse/pkgpulse/internal/config"
	"github.com/pkgpulse/pkgpulse/pkg/buildinfo"
	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/collect"
	"github.com/pkgpulse/pkgpulse/pkg/metrics"
	"github.com/pkgpulse/pkgpulse/pkg/source"
	"github.com/pkgpulse/pkgpulse/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "pkgpulse"

// configPathEnv overrides the default config file location.
const configPathEnv = "PKGPULSE_CONFIG"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pkgpulse tracks package downloads and repository traction",
		Long:         `pkgpulse is a batch CLI that collects adoption metrics for your packages and community - PyPI and npm downloads, GitHub stars, Discord members - into a local time series and renders a Markdown dashboard.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default pkgpulse.yaml, or $PKGPULSE_CONFIG)")

	// Register all subcommands
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.seriesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves and loads the configuration file.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		path = appName + ".yaml"
	}
	return config.Load(path)
}

// newCacheBackend picks the response cache backend from the config:
// Redis if an address is configured, otherwise the file cache.
func newCacheBackend(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Redis.Addr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	dir, err := fileCacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// fileCacheDir resolves the file cache directory: the configured
// cache.dir if set, otherwise the XDG default.
func fileCacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// resolveCacheDir resolves the cache directory for the cache management
// commands. A missing or broken config file falls back to the XDG
// default so "cache path" works before any config exists.
func (c *CLI) resolveCacheDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		cfg = config.Default()
	}
	return fileCacheDir(cfg)
}

// openStore opens the configured time-series store backend.
func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "csv":
		return store.OpenCSV(cfg.Storage.Path)
	default:
		return store.OpenSQLite(cfg.Storage.Path)
	}
}

// newRunner wires a collector from the config.
func (c *CLI) newRunner(cfg config.Config, st store.Store, backend cache.Cache, refresh bool) *collect.Runner {
	fetchers := source.NewRegistry(backend, source.Options{
		GitHubToken: cfg.GitHub.Token,
		CacheTTL:    cfg.Cache.TTL,
		Refresh:     refresh,
	})
	runner := collect.NewRunner(st, fetchers, c.Logger)
	runner.Concurrency = cfg.Fetch.Concurrency
	runner.ItemTimeout = cfg.Fetch.ItemTimeout
	return runner
}

// cacheDir returns the cache directory using XDG standard (~/.cache/pkgpulse/).
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

// describeItem formats a tracked item for status output.
func describeItem(item metrics.TrackedItem) string {
	return string(item.Source) + "/" + item.Name
}
